package derive

import (
	"testing"

	"listings-console/internal/forms/fieldpath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqftToSqm(t *testing.T) {
	rule := SqftToSqm("size.totalArea", "size.totalSqm")
	tree := map[string]interface{}{}
	fieldpath.Set(tree, "size.totalArea", 100000.0)

	Apply([]Rule{rule}, tree, "size.totalArea")

	got, ok := fieldpath.Get(tree, "size.totalSqm")
	require.True(t, ok)
	assert.Equal(t, 9290.3, got)
}

func TestSqftToAcres(t *testing.T) {
	rule := SqftToAcres("size.sqft", "size.acres")
	tree := map[string]interface{}{}
	fieldpath.Set(tree, "size.sqft", 87120.0)

	Apply([]Rule{rule}, tree, "size.sqft")

	got, ok := fieldpath.Get(tree, "size.acres")
	require.True(t, ok)
	assert.Equal(t, 2.0, got)
}

func TestTotalPriceFromEitherTrigger(t *testing.T) {
	rule := TotalPrice("price.perSqft", "size.sqft", "price.totalNumeric", "price.total")

	tree := map[string]interface{}{}
	fieldpath.Set(tree, "size.sqft", 75000.0)
	fieldpath.Set(tree, "price.perSqft", 980.0)

	// Fires on the rate trigger.
	Apply([]Rule{rule}, tree, "price.perSqft")

	total, ok := fieldpath.Get(tree, "price.totalNumeric")
	require.True(t, ok)
	assert.Equal(t, 73500000.0, total)

	formatted, ok := fieldpath.Get(tree, "price.total")
	require.True(t, ok)
	assert.Equal(t, "AED 73.5M", formatted)

	// Fires on the size trigger as well.
	fieldpath.Set(tree, "size.sqft", 10000.0)
	Apply([]Rule{rule}, tree, "size.sqft")

	total, _ = fieldpath.Get(tree, "price.totalNumeric")
	assert.Equal(t, 9800000.0, total)
}

func TestApplySkipsUnrelatedPaths(t *testing.T) {
	rule := SqftToSqm("size.totalArea", "size.totalSqm")
	tree := map[string]interface{}{}
	fieldpath.Set(tree, "name", "Marina Mall")

	Apply([]Rule{rule}, tree, "name")

	_, ok := fieldpath.Get(tree, "size.totalSqm")
	assert.False(t, ok)
}

func TestAllRunsEveryRule(t *testing.T) {
	rules := []Rule{
		SqftToSqm("size.sqft", "size.sqm"),
		SqftToAcres("size.sqft", "size.acres"),
	}
	tree := map[string]interface{}{}
	fieldpath.Set(tree, "size.sqft", 43560.0)

	All(rules, tree)

	sqm, _ := fieldpath.Get(tree, "size.sqm")
	acres, _ := fieldpath.Get(tree, "size.acres")
	assert.Equal(t, 4046.9, sqm)
	assert.Equal(t, 1.0, acres)
}

func TestNonNumericInputDerivesZero(t *testing.T) {
	rule := TotalPrice("price.perSqft", "size.sqft", "price.totalNumeric", "price.total")
	tree := map[string]interface{}{}
	fieldpath.Set(tree, "price.perSqft", "not a number")
	fieldpath.Set(tree, "size.sqft", 75000.0)

	Apply([]Rule{rule}, tree, "price.perSqft")

	total, _ := fieldpath.Get(tree, "price.totalNumeric")
	assert.Equal(t, 0.0, total)
}

func TestFormatAED(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{73500000, "AED 73.5M"},
		{1000000, "AED 1M"},
		{2500000000, "AED 2.5B"},
		{980000, "AED 980K"},
		{450, "AED 450"},
		{0, "AED 0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAED(tt.amount))
		})
	}
}
