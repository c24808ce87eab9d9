// internal/entities/entities.go
// Package entities declares the form definitions the console edits: field
// schemas, wizard steps, derivation rules, and cross-field checks for each
// entity type.
package entities

import (
	"listings-console/internal/common/errors"
	"listings-console/internal/forms/orchestrator"
)

// OccupancyTolerance is the relative band within which a mall's reported
// occupancy rate is accepted against the rate implied by its store counts.
const OccupancyTolerance = 0.10

// Definitions returns every form definition keyed by form type.
func Definitions() map[string]orchestrator.Definition {
	return map[string]orchestrator.Definition{
		"mall":     MallDefinition(),
		"plot":     PlotDefinition(),
		"blog":     BlogDefinition(),
		"property": PropertyDefinition(),
		"building": BuildingDefinition(),
	}
}

// Lookup resolves one form definition by form type.
func Lookup(formType string) (orchestrator.Definition, error) {
	def, ok := Definitions()[formType]
	if !ok {
		return orchestrator.Definition{}, errors.NewUnknownFormTypeError(formType)
	}
	return def, nil
}
