package core

// DetectAnomalies recomputes the Anomaly flag for every record against the
// given working set and returns a new slice, 1:1 with the input in content
// and order. The input is never mutated.
//
// A record is flagged when its amount exceeds three times the mean amount
// of its category group. The mean includes the record under test, so a
// category with a single record can never be flagged. This is a full
// recomputation: call it again after every addition, deletion or import.
func DetectAnomalies(records []Expense) []Expense {
	sums := make(map[Category]int64)
	counts := make(map[Category]int)
	for _, e := range records {
		sums[e.Category] += e.Amount.Cents
		counts[e.Category]++
	}

	out := make([]Expense, len(records))
	for i, e := range records {
		mean := float64(sums[e.Category]) / float64(counts[e.Category])
		e.Anomaly = float64(e.Amount.Cents) > 3*mean
		out[i] = e
	}
	return out
}

// CategoryMeans returns the per-category mean amount of the working set,
// in cents. Exposed for anomaly detail views (how far above the mean a
// flagged record sits).
func CategoryMeans(records []Expense) map[Category]float64 {
	sums := make(map[Category]int64)
	counts := make(map[Category]int)
	for _, e := range records {
		sums[e.Category] += e.Amount.Cents
		counts[e.Category]++
	}
	means := make(map[Category]float64, len(sums))
	for c, s := range sums {
		means[c] = float64(s) / float64(counts[c])
	}
	return means
}
