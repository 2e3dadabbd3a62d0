package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Expense {
	return []Expense{
		{ID: "1", Date: NewDate(2025, 2, 1), Amount: Money{Cents: 32000}, Vendor: "Swiggy", Category: Food},
		{ID: "2", Date: NewDate(2025, 2, 3), Amount: Money{Cents: 15000}, Vendor: "Uber", Category: Transport},
		{ID: "3", Date: NewDate(2025, 1, 12), Amount: Money{Cents: 35000}, Vendor: "Zomato", Category: Food},
		{ID: "4", Date: NewDate(2025, 2, 7), Amount: Money{Cents: 49900}, Vendor: "Netflix", Category: Entertainment},
		{ID: "5", Date: NewDate(2025, 3, 2), Amount: Money{Cents: 18000}, Vendor: "Uber", Category: Transport},
	}
}

func TestFilterByMonth(t *testing.T) {
	records := sampleRecords()

	feb := FilterByMonth(records, "2025-02")
	require.Len(t, feb, 3)
	for _, e := range feb {
		assert.Equal(t, "2025-02", e.Date.YearMonth())
	}

	assert.Empty(t, FilterByMonth(records, "2024-12"))
	assert.Len(t, FilterByMonth(records, AllMonths), len(records))
	assert.Len(t, FilterByMonth(records, ""), len(records))
	assert.Empty(t, FilterByMonth(nil, "2025-02"))
}

func TestFilterByMonthReturnsFreshSlice(t *testing.T) {
	records := sampleRecords()
	all := FilterByMonth(records, AllMonths)
	all[0].Vendor = "mutated"
	assert.Equal(t, "Swiggy", records[0].Vendor)
}

func TestMonthsSortedDescending(t *testing.T) {
	months := Months(sampleRecords())
	assert.Equal(t, []string{"2025-03", "2025-02", "2025-01"}, months)

	assert.Empty(t, Months(nil))
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals(sampleRecords())
	require.Len(t, totals, 3)

	assert.Equal(t, Food, totals[0].Category)
	assert.Equal(t, int64(67000), totals[0].Total.Cents)
	assert.Equal(t, Entertainment, totals[1].Category)
	assert.Equal(t, Transport, totals[2].Category)

	assert.Empty(t, CategoryTotals(nil))
}

func TestTopVendors(t *testing.T) {
	top := TopVendors(sampleRecords(), 5)
	require.Len(t, top, 4)

	assert.Equal(t, "Netflix", top[0].Vendor)
	assert.Equal(t, "Zomato", top[1].Vendor)
	assert.Equal(t, "Uber", top[2].Vendor)
	assert.Equal(t, int64(33000), top[2].Total.Cents)
	assert.Equal(t, "Swiggy", top[3].Vendor)

	assert.Len(t, TopVendors(sampleRecords(), 2), 2)
	assert.Empty(t, TopVendors(nil, 5))
	assert.Empty(t, TopVendors(sampleRecords(), 0))
}

func TestTopVendorsTiesAreStable(t *testing.T) {
	records := []Expense{
		{Vendor: "A", Amount: Money{Cents: 100}},
		{Vendor: "B", Amount: Money{Cents: 100}},
		{Vendor: "C", Amount: Money{Cents: 100}},
	}
	top := TopVendors(records, 5)
	require.Len(t, top, 3)
	assert.Equal(t, "A", top[0].Vendor)
	assert.Equal(t, "B", top[1].Vendor)
	assert.Equal(t, "C", top[2].Vendor)
}

func TestTotalSpend(t *testing.T) {
	assert.Equal(t, int64(149900), TotalSpend(sampleRecords()).Cents)
	assert.Equal(t, int64(0), TotalSpend(nil).Cents)
}

func TestAggregationsShareFilteredInput(t *testing.T) {
	// The month filter composes with every reduction.
	feb := FilterByMonth(sampleRecords(), "2025-02")

	assert.Equal(t, int64(96900), TotalSpend(feb).Cents)

	totals := CategoryTotals(feb)
	require.Len(t, totals, 3)
	assert.Equal(t, Entertainment, totals[0].Category)

	top := TopVendors(feb, 5)
	require.Len(t, top, 3)
	assert.Equal(t, "Netflix", top[0].Vendor)
}
