package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngestor() *Ingestor {
	return NewIngestor(DefaultTable(), NewCounter(1)).WithClock(func() time.Time {
		return time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	})
}

func TestIngestDropsBadAmounts(t *testing.T) {
	csv := "date,amount,vendor,description\n" +
		"2025-02-01,320,Swiggy,Dinner\n" +
		"2025-02-02,-5,Uber,Bad\n" +
		"2025-02-03,abc,Zomato,Lunch"

	records, sum, err := testIngestor().Ingest(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, Summary{Accepted: 1, Dropped: 2}, sum)

	e := records[0]
	assert.Equal(t, "2025-02-01", e.Date.String())
	assert.Equal(t, int64(32000), e.Amount.Cents)
	assert.Equal(t, "Swiggy", e.Vendor)
	assert.Equal(t, "Dinner", e.Description)
	assert.Equal(t, Food, e.Category)
	assert.False(t, e.Anomaly)
}

func TestIngestHeaderAliasesAndCase(t *testing.T) {
	csv := "vendorName,description,expenseDate,AMOUNT\n" +
		"Uber,Office cab,2025-02-02,150\n" +
		"Netflix,Monthly sub,2025-02-03,499"

	records, sum, err := testIngestor().Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, sum.Accepted)

	assert.Equal(t, "Uber", records[0].Vendor)
	assert.Equal(t, Transport, records[0].Category)
	assert.Equal(t, "2025-02-02", records[0].Date.String())
	assert.Equal(t, Entertainment, records[1].Category)
}

func TestIngestVendorNameAlias(t *testing.T) {
	csv := "date,amount,vendor name\n2025-01-10,75,Ola"
	records, _, err := testIngestor().Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ola", records[0].Vendor)
	assert.Equal(t, Transport, records[0].Category)
}

func TestIngestDefaults(t *testing.T) {
	// Missing date falls back to the (injected) current day; short rows
	// default remaining fields instead of failing.
	csv := "date,amount,vendor,description\n" +
		",42,,\n" +
		"2025-02-05,10"

	records, sum, err := testIngestor().Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Summary{Accepted: 2, Dropped: 0}, sum)

	assert.Equal(t, "2025-03-15", records[0].Date.String())
	assert.Equal(t, "", records[0].Vendor)
	assert.Equal(t, Other, records[0].Category)

	assert.Equal(t, "", records[1].Vendor)
	assert.Equal(t, "", records[1].Description)
}

func TestIngestIgnoresCategoryColumn(t *testing.T) {
	// A category column in the input is never trusted; category is always
	// re-derived from the vendor.
	csv := "date,amount,vendor,category\n2025-02-01,100,Swiggy,Travel"
	records, _, err := testIngestor().Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Food, records[0].Category)
}

func TestIngestSequentialIDs(t *testing.T) {
	csv := "date,amount,vendor\n2025-02-01,1,A\n2025-02-01,2,B\n2025-02-01,x,C\n2025-02-01,3,D"
	records, _, err := testIngestor().Ingest(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 3)

	// The dropped row does not consume an ID.
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "2", records[1].ID)
	assert.Equal(t, "3", records[2].ID)
}

func TestIngestUnusableInput(t *testing.T) {
	_, _, err := testIngestor().Ingest(strings.NewReader(""))
	assert.Error(t, err)

	_, _, err = testIngestor().Ingest(strings.NewReader("foo,bar\n1,2"))
	assert.Error(t, err)
}

func TestIngestHeaderOnly(t *testing.T) {
	records, sum, err := testIngestor().Ingest(strings.NewReader("date,amount,vendor,description\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, Summary{}, sum)
}

func TestUUIDGenerator(t *testing.T) {
	var gen UUIDGenerator
	a, b := gen.NextID(), gen.NextID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
