package core

import "sort"

// AllMonths is the identity period filter.
const AllMonths = "all"

// CategoryTotal is an amount summed over one category.
type CategoryTotal struct {
	Category Category
	Total    Money
}

// VendorTotal is an amount summed over one vendor.
type VendorTotal struct {
	Vendor string
	Total  Money
}

// FilterByMonth keeps records whose date falls in the given YYYY-MM month.
// AllMonths (or an empty string) keeps everything. The result is always a
// fresh slice; the input is never mutated.
func FilterByMonth(records []Expense, month string) []Expense {
	if month == AllMonths || month == "" {
		out := make([]Expense, len(records))
		copy(out, records)
		return out
	}
	out := make([]Expense, 0, len(records))
	for _, e := range records {
		if e.Date.YearMonth() == month {
			out = append(out, e)
		}
	}
	return out
}

// Months returns the distinct YYYY-MM prefixes present in the working set,
// most recent first. Zero dates are skipped.
func Months(records []Expense) []string {
	seen := make(map[string]bool)
	var months []string
	for _, e := range records {
		if e.Date.IsZero() {
			continue
		}
		ym := e.Date.YearMonth()
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// CategoryTotals groups records by category and sums amounts, sorted by
// total descending. Categories without records are omitted, not
// zero-filled.
func CategoryTotals(records []Expense) []CategoryTotal {
	sums := make(map[Category]int64)
	var order []Category
	for _, e := range records {
		if _, ok := sums[e.Category]; !ok {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Amount.Cents
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryTotal{Category: c, Total: Money{Cents: sums[c]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// TopVendors groups records by vendor, sums amounts and returns the top n
// pairs sorted by total descending. Ties keep first-seen order, so the
// ranking is deterministic for a given input order.
func TopVendors(records []Expense, n int) []VendorTotal {
	if n <= 0 {
		return []VendorTotal{}
	}
	sums := make(map[string]int64)
	var order []string
	for _, e := range records {
		if _, ok := sums[e.Vendor]; !ok {
			order = append(order, e.Vendor)
		}
		sums[e.Vendor] += e.Amount.Cents
	}

	out := make([]VendorTotal, 0, len(order))
	for _, v := range order {
		out = append(out, VendorTotal{Vendor: v, Total: Money{Cents: sums[v]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TotalSpend sums amounts over the given records.
func TotalSpend(records []Expense) Money {
	var cents int64
	for _, e := range records {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}
