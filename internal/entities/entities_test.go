package entities

import (
	"context"
	"testing"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/forms/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openForm(t *testing.T, def orchestrator.Definition) *orchestrator.Orchestrator {
	o, err := orchestrator.New(orchestrator.Options{
		Definition: def,
		Mode:       orchestrator.ModeAdd,
		Logger:     logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	require.NoError(t, o.Open(context.Background()))
	return o
}

func TestDefinitionsCoverEveryFormType(t *testing.T) {
	defs := Definitions()
	for _, formType := range []string{"mall", "plot", "blog", "property", "building"} {
		def, ok := defs[formType]
		require.True(t, ok, formType)
		assert.Equal(t, formType, def.FormType)
		assert.NotNil(t, def.Schema)
		assert.NotEmpty(t, def.Steps)
	}
}

func TestLookupUnknownFormType(t *testing.T) {
	_, err := Lookup("warehouse")
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeUnknownFormType), errors.CodeOf(err))
}

func TestMallSizeAutoCalc(t *testing.T) {
	o := openForm(t, MallDefinition())

	require.NoError(t, o.Update("size.totalArea", 100000))

	sqm, ok := o.Value("size.totalSqm")
	require.True(t, ok)
	assert.Equal(t, 9290.3, sqm)
}

func TestMallVacantStoresCrossRule(t *testing.T) {
	o := openForm(t, MallDefinition())

	require.NoError(t, o.Update("stores.total", 40))
	require.NoError(t, o.Update("stores.vacant", 55))
	assert.Equal(t, "Vacant stores cannot exceed total stores", o.FieldErrors()["stores.vacant"])

	require.NoError(t, o.Update("stores.vacant", 12))
	assert.False(t, o.FieldErrors().Has("stores.vacant"))
}

func TestMallOccupancyAdvisoryIsNonBlocking(t *testing.T) {
	o := openForm(t, MallDefinition())

	require.NoError(t, o.Update("name", "Marina Mall"))
	require.NoError(t, o.Update("location.city", "Dubai"))
	require.NoError(t, o.Update("size.totalArea", 100000))
	require.NoError(t, o.Update("stores.total", 100))
	require.NoError(t, o.Update("stores.vacant", 50))
	// Store counts imply 50% but the reported rate says 95%.
	require.NoError(t, o.Update("occupancyRate", 95))

	warnings := o.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "does not match store counts")

	// Advisory only: the form still validates.
	assert.True(t, o.OverallValid())

	// Within the tolerance band no warning is raised.
	require.NoError(t, o.Update("occupancyRate", 55))
	assert.Empty(t, o.Warnings())
}

func TestPlotPriceAutoCalc(t *testing.T) {
	o := openForm(t, PlotDefinition())

	require.NoError(t, o.Update("size.sqft", 75000))
	require.NoError(t, o.Update("price.perSqft", 980))

	total, _ := o.Value("price.totalNumeric")
	assert.Equal(t, 73500000.0, total)
	formatted, _ := o.Value("price.total")
	assert.Equal(t, "AED 73.5M", formatted)

	acres, _ := o.Value("size.acres")
	assert.Equal(t, 1.72, acres)
}

func TestPropertyPriceDisplayDerivation(t *testing.T) {
	o := openForm(t, PropertyDefinition())

	require.NoError(t, o.Update("price.amountNumeric", 2500000))
	amount, _ := o.Value("price.amount")
	assert.Equal(t, "AED 2.5M", amount)
}

func TestBuildingAvailableUnitsCrossRule(t *testing.T) {
	o := openForm(t, BuildingDefinition())

	require.NoError(t, o.Update("units.total", 120))
	require.NoError(t, o.Update("units.available", 200))
	assert.Equal(t, "Available units cannot exceed total units", o.FieldErrors()["units.available"])
}

func TestBlogRequiredFieldsGateTheContentStep(t *testing.T) {
	o := openForm(t, BlogDefinition())
	require.False(t, o.OverallValid())

	require.NoError(t, o.Update("title", "Market update"))
	require.NoError(t, o.Update("slug", "market-update"))
	require.NoError(t, o.Update("content", "Prices held steady this quarter."))
	assert.True(t, o.OverallValid())
}
