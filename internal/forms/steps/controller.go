// Package steps sequences the screens of a multi-step form and derives
// per-step completion status from the live form state.
package steps

// Status is the derived completion state of one step.
type Status string

const (
	StatusValid      Status = "valid"
	StatusInvalid    Status = "invalid"
	StatusIncomplete Status = "incomplete"
)

// Step is one screen of the wizard. Steps are defined statically per form
// type and never mutated at runtime.
type Step struct {
	ID                 string
	Title              string
	RequiredFieldPaths []string
}

// Inspector exposes the live form state the controller derives status from.
// Status is always recomputed, never cached.
type Inspector interface {
	// Value returns the current value at the path and whether it is present.
	Value(path string) (interface{}, bool)
	// IsDefault reports whether the value at the path is the schema default.
	IsDefault(path string) bool
	// ErrorAt re-runs the field's validator against the live snapshot and
	// returns the active error message, or "".
	ErrorAt(path string) string
}

// Controller holds the ordered step list and the current index. It has no
// other state.
type Controller struct {
	steps []Step
	index int
	form  Inspector
}

func NewController(stepList []Step, form Inspector) *Controller {
	return &Controller{
		steps: stepList,
		form:  form,
	}
}

// Steps returns the ordered step list.
func (c *Controller) Steps() []Step {
	return c.steps
}

// Index returns the current step index.
func (c *Controller) Index() int {
	return c.index
}

// Current returns the current step.
func (c *Controller) Current() Step {
	return c.steps[c.index]
}

// Next advances one step; a no-op at the last step.
func (c *Controller) Next() {
	if c.index < len(c.steps)-1 {
		c.index++
	}
}

// Prev goes back one step; a no-op at the first step.
func (c *Controller) Prev() {
	if c.index > 0 {
		c.index--
	}
}

// GoTo jumps to the given step index; out-of-range indexes are ignored.
func (c *Controller) GoTo(index int) {
	if index >= 0 && index < len(c.steps) {
		c.index = index
	}
}

// StatusOf derives the completion status of the step at the given index:
// valid iff every required field is non-default with no active error,
// invalid iff at least one required field has an active error, otherwise
// incomplete.
func (c *Controller) StatusOf(index int) Status {
	if index < 0 || index >= len(c.steps) {
		return StatusIncomplete
	}

	incomplete := false
	for _, path := range c.steps[index].RequiredFieldPaths {
		if c.form.ErrorAt(path) != "" {
			return StatusInvalid
		}
		if c.form.IsDefault(path) {
			incomplete = true
		}
	}

	if incomplete {
		return StatusIncomplete
	}
	return StatusValid
}

// OverallValid reports whether every step is valid.
func (c *Controller) OverallValid() bool {
	for i := range c.steps {
		if c.StatusOf(i) != StatusValid {
			return false
		}
	}
	return true
}
