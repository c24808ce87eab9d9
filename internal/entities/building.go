// internal/entities/building.go
package entities

import (
	"listings-console/internal/forms/derive"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/orchestrator"
	"listings-console/internal/forms/schema"
	"listings-console/internal/forms/steps"
)

// BuildingDefinition declares the building add/edit form.
func BuildingDefinition() orchestrator.Definition {
	return orchestrator.Definition{
		FormType:   "building",
		EntityType: "building",
		Schema: &schema.Schema{
			FormType: "building",
			Fields: map[string]schema.FieldSpec{
				"name":            {Type: schema.TypeString, Label: "Building name", Required: true, MaxLength: 120},
				"location.city":   {Type: schema.TypeString, Label: "City", Required: true, MaxLength: 80},
				"location.area":   {Type: schema.TypeString, Label: "Area", MaxLength: 120},
				"floors.total":    {Type: schema.TypeNumber, Label: "Total floors", Required: true, Minimum: schema.Float64Ptr(1), Maximum: schema.Float64Ptr(200)},
				"units.total":     {Type: schema.TypeNumber, Label: "Total units", Minimum: schema.Float64Ptr(0)},
				"units.available": {Type: schema.TypeNumber, Label: "Available units", Minimum: schema.Float64Ptr(0)},
				"size.plotSqft":   {Type: schema.TypeNumber, Label: "Plot size (sqft)", Minimum: schema.Float64Ptr(0)},
				"size.plotSqm":    {Type: schema.TypeNumber, Label: "Plot size (sqm)"},
				"yearBuilt":       {Type: schema.TypeNumber, Label: "Year built", Minimum: schema.Float64Ptr(1900), Maximum: schema.Float64Ptr(2100)},
				"description":     {Type: schema.TypeString, Label: "Description", MaxLength: 2000},
				"images":          {Type: schema.TypeStringArray, Label: "Images", Image: true},
				"ui.activeTab":    {Type: schema.TypeString, Label: "Active tab", Scaffolding: true},
			},
			CrossRules: []schema.CrossRule{
				{
					Path: "units.available",
					Check: func(snapshot map[string]interface{}) string {
						available, _ := fieldpath.Get(snapshot, "units.available")
						total, _ := fieldpath.Get(snapshot, "units.total")
						if fieldpath.Number(available) > fieldpath.Number(total) {
							return "Available units cannot exceed total units"
						}
						return ""
					},
				},
			},
			Initial: func() map[string]interface{} {
				return map[string]interface{}{
					"name": "",
					"location": map[string]interface{}{
						"city": "",
						"area": "",
					},
					"floors": map[string]interface{}{
						"total": 0.0,
					},
					"units": map[string]interface{}{
						"total":     0.0,
						"available": 0.0,
					},
					"size": map[string]interface{}{
						"plotSqft": 0.0,
						"plotSqm":  0.0,
					},
					"yearBuilt":   0.0,
					"description": "",
					"images":      []string{},
				}
			},
		},
		Steps: []steps.Step{
			{ID: "basic", Title: "Basic Info", RequiredFieldPaths: []string{"name", "location.city"}},
			{ID: "structure", Title: "Structure", RequiredFieldPaths: []string{"floors.total"}},
		},
		Derivations: []derive.Rule{
			derive.SqftToSqm("size.plotSqft", "size.plotSqm"),
		},
	}
}
