package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeForm implements Inspector over plain maps.
type fakeForm struct {
	values map[string]interface{}
	errs   map[string]string
}

func (f *fakeForm) Value(path string) (interface{}, bool) {
	v, ok := f.values[path]
	return v, ok
}

func (f *fakeForm) IsDefault(path string) bool {
	v, ok := f.values[path]
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr {
		return s == ""
	}
	if n, isNum := v.(float64); isNum {
		return n == 0
	}
	return false
}

func (f *fakeForm) ErrorAt(path string) string {
	return f.errs[path]
}

func testSteps() []Step {
	return []Step{
		{ID: "basic", Title: "Basic Info", RequiredFieldPaths: []string{"name", "status"}},
		{ID: "location", Title: "Location", RequiredFieldPaths: []string{"locationDetails.city"}},
		{ID: "pricing", Title: "Pricing", RequiredFieldPaths: []string{"price.perSqft"}},
	}
}

func filledForm() *fakeForm {
	return &fakeForm{
		values: map[string]interface{}{
			"name":                 "Marina Mall",
			"status":               "operational",
			"locationDetails.city": "Dubai",
			"price.perSqft":        980.0,
		},
		errs: map[string]string{},
	}
}

func TestStatusOfValid(t *testing.T) {
	c := NewController(testSteps(), filledForm())

	assert.Equal(t, StatusValid, c.StatusOf(0))
	assert.Equal(t, StatusValid, c.StatusOf(1))
	assert.Equal(t, StatusValid, c.StatusOf(2))
	assert.True(t, c.OverallValid())
}

func TestStatusOfIncompleteWhenRequiredFieldMissing(t *testing.T) {
	form := filledForm()
	form.values["status"] = ""

	c := NewController(testSteps(), form)

	assert.Equal(t, StatusIncomplete, c.StatusOf(0))
	assert.False(t, c.OverallValid())
}

func TestStatusOfInvalidWhenFieldHasError(t *testing.T) {
	form := filledForm()
	form.errs["name"] = "name too long"

	c := NewController(testSteps(), form)

	assert.Equal(t, StatusInvalid, c.StatusOf(0))
	assert.False(t, c.OverallValid())
}

func TestStatusMonotonicity(t *testing.T) {
	// Filling every required field with valid values yields valid; removing
	// any one of them never yields valid.
	for _, path := range testSteps()[0].RequiredFieldPaths {
		form := filledForm()
		delete(form.values, path)

		c := NewController(testSteps(), form)
		assert.NotEqual(t, StatusValid, c.StatusOf(0), "missing %s", path)
	}
}

func TestStatusOfOutOfRange(t *testing.T) {
	c := NewController(testSteps(), filledForm())

	assert.Equal(t, StatusIncomplete, c.StatusOf(-1))
	assert.Equal(t, StatusIncomplete, c.StatusOf(3))
}

func TestNavigationBounds(t *testing.T) {
	c := NewController(testSteps(), filledForm())

	c.Prev()
	assert.Equal(t, 0, c.Index(), "prev is a no-op at the first step")

	c.Next()
	assert.Equal(t, 1, c.Index())
	c.Next()
	c.Next()
	assert.Equal(t, 2, c.Index(), "next is a no-op at the last step")

	c.GoTo(0)
	assert.Equal(t, 0, c.Index())
	c.GoTo(99)
	assert.Equal(t, 0, c.Index(), "out-of-range goTo is ignored")
	c.GoTo(-1)
	assert.Equal(t, 0, c.Index())
}

func TestStatusIsRecomputedNotCached(t *testing.T) {
	form := filledForm()
	c := NewController(testSteps(), form)
	assert.Equal(t, StatusValid, c.StatusOf(0))

	form.errs["status"] = "bad status"
	assert.Equal(t, StatusInvalid, c.StatusOf(0))

	delete(form.errs, "status")
	assert.Equal(t, StatusValid, c.StatusOf(0))
}
