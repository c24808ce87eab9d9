// internal/entities/property.go
package entities

import (
	"listings-console/internal/forms/derive"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/orchestrator"
	"listings-console/internal/forms/schema"
	"listings-console/internal/forms/steps"
)

// PropertyDefinition declares the property listing add/edit form.
func PropertyDefinition() orchestrator.Definition {
	return orchestrator.Definition{
		FormType:   "property",
		EntityType: "property",
		Schema: &schema.Schema{
			FormType: "property",
			Fields: map[string]schema.FieldSpec{
				"title":               {Type: schema.TypeString, Label: "Title", Required: true, MaxLength: 200},
				"propertyType":        {Type: schema.TypeString, Label: "Property type", Required: true, Enum: []string{"apartment", "villa", "townhouse", "penthouse", "office"}},
				"location.city":       {Type: schema.TypeString, Label: "City", Required: true, MaxLength: 80},
				"location.area":       {Type: schema.TypeString, Label: "Area", MaxLength: 120},
				"bedrooms":            {Type: schema.TypeNumber, Label: "Bedrooms", Minimum: schema.Float64Ptr(0), Maximum: schema.Float64Ptr(20)},
				"bathrooms":           {Type: schema.TypeNumber, Label: "Bathrooms", Minimum: schema.Float64Ptr(0), Maximum: schema.Float64Ptr(20)},
				"size.sqft":           {Type: schema.TypeNumber, Label: "Size (sqft)", Required: true, Minimum: schema.Float64Ptr(0)},
				"size.sqm":            {Type: schema.TypeNumber, Label: "Size (sqm)"},
				"price.amountNumeric": {Type: schema.TypeNumber, Label: "Price (AED)", Required: true, Minimum: schema.Float64Ptr(0)},
				"price.amount":        {Type: schema.TypeString, Label: "Price (display)"},
				"furnished":           {Type: schema.TypeBoolean, Label: "Furnished"},
				"description":         {Type: schema.TypeString, Label: "Description", MaxLength: 2000},
				"images":              {Type: schema.TypeStringArray, Label: "Images", Image: true},
				"ui.activeTab":        {Type: schema.TypeString, Label: "Active tab", Scaffolding: true},
			},
			Initial: func() map[string]interface{} {
				return map[string]interface{}{
					"title":        "",
					"propertyType": "",
					"location": map[string]interface{}{
						"city": "",
						"area": "",
					},
					"bedrooms":  0.0,
					"bathrooms": 0.0,
					"size": map[string]interface{}{
						"sqft": 0.0,
						"sqm":  0.0,
					},
					"price": map[string]interface{}{
						"amountNumeric": 0.0,
						"amount":        "",
					},
					"furnished":   false,
					"description": "",
					"images":      []string{},
				}
			},
		},
		Steps: []steps.Step{
			{ID: "basic", Title: "Basic Info", RequiredFieldPaths: []string{"title", "propertyType", "location.city"}},
			{ID: "details", Title: "Details", RequiredFieldPaths: []string{"size.sqft"}},
			{ID: "pricing", Title: "Pricing", RequiredFieldPaths: []string{"price.amountNumeric"}},
		},
		Derivations: []derive.Rule{
			derive.SqftToSqm("size.sqft", "size.sqm"),
			formatPrice("price.amountNumeric", "price.amount"),
		},
	}
}

// formatPrice derives the display form of a price leaf.
func formatPrice(numericPath, displayPath string) derive.Rule {
	return derive.Rule{
		Name:     "format-price",
		Triggers: []string{numericPath},
		Apply: func(tree map[string]interface{}) {
			amount, _ := fieldpath.Get(tree, numericPath)
			fieldpath.Set(tree, displayPath, derive.FormatAED(fieldpath.Number(amount)))
		},
	}
}
