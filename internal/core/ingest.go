package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for ingested records. Callers that
// persist records afterwards may overwrite these with storage-assigned IDs.
type IDGenerator interface {
	NextID() string
}

// Counter is a monotonic IDGenerator scoped to a single ingestion session.
// It is not safe for concurrent use; create one per Ingest call.
type Counter struct {
	next int64
}

func NewCounter(start int64) *Counter {
	return &Counter{next: start}
}

func (c *Counter) NextID() string {
	id := c.next
	c.next++
	return strconv.FormatInt(id, 10)
}

// UUIDGenerator issues random UUIDs, for callers that need IDs unique
// across ingestion sessions.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// Summary reports the outcome of one ingestion run. Row rejection is not
// an error: callers surface only these counts, never per-row failures.
type Summary struct {
	Accepted int
	Dropped  int
}

// Ingestor parses comma-delimited text into classified expense records.
// A fresh Ingest call reparses from scratch; the Ingestor itself holds no
// per-call state beyond the injected ID generator.
type Ingestor struct {
	table *Table
	ids   IDGenerator
	now   func() time.Time
}

// NewIngestor builds an Ingestor over the given classification table and
// ID generator. The clock defaults to time.Now and exists for tests.
func NewIngestor(table *Table, ids IDGenerator) *Ingestor {
	return &Ingestor{table: table, ids: ids, now: time.Now}
}

// WithClock overrides the clock used for defaulted dates.
func (in *Ingestor) WithClock(now func() time.Time) *Ingestor {
	in.now = now
	return in
}

// Column aliases accepted in the header row, matched case-insensitively.
var (
	dateAliases        = []string{"date", "expense date", "expensedate"}
	amountAliases      = []string{"amount"}
	vendorAliases      = []string{"vendor", "vendor name", "vendorname"}
	descriptionAliases = []string{"description"}
)

// Ingest parses CSV input into expense records.
//
// The first line is a header; matching is case-insensitive and tolerant of
// the aliases above. Missing fields fall back to defaults (today's date,
// empty vendor/description, zero amount) and never fail the row. Category
// is always re-derived from the vendor so records stay consistent with the
// current classification table, even if the input carries a category
// column. Rows whose amount is zero, negative or unparsable are silently
// dropped and counted in the summary.
//
// An error is returned only when the input itself is unreadable or carries
// no usable header, never for malformed data rows.
func (in *Ingestor) Ingest(r io.Reader) ([]Expense, Summary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("read header: %w", err)
	}

	dateCol := findColumn(header, dateAliases)
	amountCol := findColumn(header, amountAliases)
	vendorCol := findColumn(header, vendorAliases)
	descCol := findColumn(header, descriptionAliases)
	if dateCol < 0 && amountCol < 0 && vendorCol < 0 && descCol < 0 {
		return nil, Summary{}, fmt.Errorf("no recognized columns in header %v", header)
	}

	var (
		records []Expense
		sum     Summary
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Treat an unreadable row like any other malformed row.
			sum.Dropped++
			continue
		}

		amount := ParseAmount(cell(row, amountCol))
		if !amount.Positive() {
			sum.Dropped++
			continue
		}

		date, err := ParseDate(cell(row, dateCol))
		if err != nil {
			date = DateOf(in.now())
		}
		vendor := cell(row, vendorCol)

		records = append(records, Expense{
			ID:          in.ids.NextID(),
			Date:        date,
			Amount:      amount,
			Vendor:      vendor,
			Description: cell(row, descCol),
			Category:    in.table.Classify(vendor),
		})
		sum.Accepted++
	}

	return records, sum, nil
}

// findColumn returns the index of the first header matching any alias,
// or -1 when absent.
func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

// cell safely reads a trimmed value from a row; out-of-range or unmapped
// columns read as empty.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
