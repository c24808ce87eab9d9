// internal/entities/plot.go
package entities

import (
	"listings-console/internal/forms/derive"
	"listings-console/internal/forms/orchestrator"
	"listings-console/internal/forms/schema"
	"listings-console/internal/forms/steps"
)

// PlotDefinition declares the plot add/edit form.
func PlotDefinition() orchestrator.Definition {
	return orchestrator.Definition{
		FormType:   "plot",
		EntityType: "plot",
		Schema: &schema.Schema{
			FormType: "plot",
			Fields: map[string]schema.FieldSpec{
				"plotNumber":         {Type: schema.TypeString, Label: "Plot number", Required: true, MaxLength: 40},
				"zoning":             {Type: schema.TypeString, Label: "Zoning", Required: true, Enum: []string{"residential", "commercial", "mixed", "industrial"}},
				"location.city":      {Type: schema.TypeString, Label: "City", Required: true, MaxLength: 80},
				"location.area":      {Type: schema.TypeString, Label: "Area", MaxLength: 120},
				"size.sqft":          {Type: schema.TypeNumber, Label: "Size (sqft)", Required: true, Minimum: schema.Float64Ptr(0)},
				"size.sqm":           {Type: schema.TypeNumber, Label: "Size (sqm)"},
				"size.acres":         {Type: schema.TypeNumber, Label: "Size (acres)"},
				"price.perSqft":      {Type: schema.TypeNumber, Label: "Price per sqft (AED)", Required: true, Minimum: schema.Float64Ptr(0)},
				"price.totalNumeric": {Type: schema.TypeNumber, Label: "Total price"},
				"price.total":        {Type: schema.TypeString, Label: "Total price (display)"},
				"description":        {Type: schema.TypeString, Label: "Description", MaxLength: 2000},
				"images":             {Type: schema.TypeStringArray, Label: "Images", Image: true},
				"ui.activeTab":       {Type: schema.TypeString, Label: "Active tab", Scaffolding: true},
			},
			Initial: func() map[string]interface{} {
				return map[string]interface{}{
					"plotNumber": "",
					"zoning":     "",
					"location": map[string]interface{}{
						"city": "",
						"area": "",
					},
					"size": map[string]interface{}{
						"sqft":  0.0,
						"sqm":   0.0,
						"acres": 0.0,
					},
					"price": map[string]interface{}{
						"perSqft":      0.0,
						"totalNumeric": 0.0,
						"total":        "",
					},
					"description": "",
					"images":      []string{},
				}
			},
		},
		Steps: []steps.Step{
			{ID: "basic", Title: "Basic Info", RequiredFieldPaths: []string{"plotNumber", "zoning", "location.city"}},
			{ID: "size", Title: "Size", RequiredFieldPaths: []string{"size.sqft"}},
			{ID: "pricing", Title: "Pricing", RequiredFieldPaths: []string{"price.perSqft"}},
		},
		Derivations: []derive.Rule{
			derive.SqftToSqm("size.sqft", "size.sqm"),
			derive.SqftToAcres("size.sqft", "size.acres"),
			derive.TotalPrice("price.perSqft", "size.sqft", "price.totalNumeric", "price.total"),
		},
	}
}
