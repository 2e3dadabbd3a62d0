package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amounts(cat Category, cents ...int64) []Expense {
	out := make([]Expense, len(cents))
	for i, c := range cents {
		out[i] = Expense{Category: cat, Amount: Money{Cents: c}}
	}
	return out
}

func TestDetectAnomaliesThreshold(t *testing.T) {
	// Group mean is inclusive of the record under test: for amounts
	// 100, 100, 100, 100, 2000 the Food mean is 480, so only the 2000
	// record clears the 3x line (1440).
	records := amounts(Food, 10000, 10000, 10000, 10000, 200000)

	flagged := DetectAnomalies(records)
	require.Len(t, flagged, 5)
	for i := 0; i < 4; i++ {
		assert.False(t, flagged[i].Anomaly, "record %d", i)
	}
	assert.True(t, flagged[4].Anomaly)
}

func TestDetectAnomaliesInclusiveMeanDampens(t *testing.T) {
	// 100, 100, 1000: mean is 400 and 1000 < 1200, so even the obvious
	// outlier stays unflagged. The inclusive mean is the defined policy,
	// not exclusive-of-self averaging.
	flagged := DetectAnomalies(amounts(Food, 10000, 10000, 100000))
	for i := range flagged {
		assert.False(t, flagged[i].Anomaly, "record %d", i)
	}
}

func TestDetectAnomaliesPerCategoryMean(t *testing.T) {
	records := append(amounts(Food, 10000, 10000, 10000, 10000, 200000), amounts(Transport, 500)...)
	flagged := DetectAnomalies(records)

	// A cheap Transport singleton must not dilute the Food mean, and a
	// singleton group can never be flagged (amount == mean).
	assert.True(t, flagged[4].Anomaly)
	assert.False(t, flagged[5].Anomaly)
}

func TestDetectAnomaliesSingletonNeverFlagged(t *testing.T) {
	flagged := DetectAnomalies(amounts(Travel, 99999999))
	require.Len(t, flagged, 1)
	assert.False(t, flagged[0].Anomaly)
}

func TestDetectAnomaliesPreservesOrderAndInput(t *testing.T) {
	records := []Expense{
		{ID: "1", Category: Food, Amount: Money{Cents: 100}, Anomaly: true}, // stale flag
		{ID: "2", Category: Food, Amount: Money{Cents: 100}},
		{ID: "3", Category: Food, Amount: Money{Cents: 100}},
		{ID: "4", Category: Food, Amount: Money{Cents: 100}},
		{ID: "5", Category: Food, Amount: Money{Cents: 2000}},
	}
	flagged := DetectAnomalies(records)

	require.Len(t, flagged, 5)
	for i, want := range []string{"1", "2", "3", "4", "5"} {
		assert.Equal(t, want, flagged[i].ID)
	}

	// Stale caller-supplied flags are recomputed, never trusted.
	assert.False(t, flagged[0].Anomaly)
	assert.True(t, flagged[4].Anomaly)

	// Input slice is untouched.
	assert.True(t, records[0].Anomaly)
	assert.False(t, records[4].Anomaly)
}

func TestDetectAnomaliesIdempotent(t *testing.T) {
	records := append(amounts(Food, 10000, 10000, 10000, 200000), amounts(Shopping, 99900)...)
	first := DetectAnomalies(records)
	second := DetectAnomalies(first)
	assert.Equal(t, first, second)
}

func TestDetectAnomaliesEmpty(t *testing.T) {
	assert.Empty(t, DetectAnomalies(nil))
}

func TestCategoryMeans(t *testing.T) {
	records := append(amounts(Food, 100, 200), amounts(Health, 900)...)
	means := CategoryMeans(records)
	assert.InDelta(t, 150, means[Food], 0.001)
	assert.InDelta(t, 900, means[Health], 0.001)
	assert.NotContains(t, means, Travel)
}
