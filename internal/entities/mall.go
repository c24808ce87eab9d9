// internal/entities/mall.go
package entities

import (
	"fmt"
	"math"

	"listings-console/internal/forms/derive"
	"listings-console/internal/forms/fieldpath"
	"listings-console/internal/forms/orchestrator"
	"listings-console/internal/forms/schema"
	"listings-console/internal/forms/steps"
)

// MallDefinition declares the mall add/edit form.
func MallDefinition() orchestrator.Definition {
	return orchestrator.Definition{
		FormType:   "mall",
		EntityType: "mall",
		Schema: &schema.Schema{
			FormType: "mall",
			Fields: map[string]schema.FieldSpec{
				"name":            {Type: schema.TypeString, Label: "Mall name", Required: true, MaxLength: 120},
				"location.city":   {Type: schema.TypeString, Label: "City", Required: true, MaxLength: 80},
				"location.area":   {Type: schema.TypeString, Label: "Area", MaxLength: 120},
				"size.totalArea":  {Type: schema.TypeNumber, Label: "Total area (sqft)", Required: true, Minimum: schema.Float64Ptr(0)},
				"size.totalSqm":   {Type: schema.TypeNumber, Label: "Total area (sqm)"},
				"stores.total":    {Type: schema.TypeNumber, Label: "Total stores", Required: true, Minimum: schema.Float64Ptr(0)},
				"stores.vacant":   {Type: schema.TypeNumber, Label: "Vacant stores", Minimum: schema.Float64Ptr(0)},
				"occupancyRate":   {Type: schema.TypeNumber, Label: "Occupancy rate (%)", Minimum: schema.Float64Ptr(0), Maximum: schema.Float64Ptr(100)},
				"description":     {Type: schema.TypeString, Label: "Description", MaxLength: 2000},
				"status":          {Type: schema.TypeString, Label: "Status", Enum: []string{"draft", "published"}},
				"images":          {Type: schema.TypeStringArray, Label: "Images", Image: true},
				"ui.activeTab":    {Type: schema.TypeString, Label: "Active tab", Scaffolding: true},
				"ui.galleryIndex": {Type: schema.TypeNumber, Label: "Gallery index", Scaffolding: true},
			},
			CrossRules: []schema.CrossRule{
				{
					Path: "stores.vacant",
					Check: func(snapshot map[string]interface{}) string {
						vacant, _ := fieldpath.Get(snapshot, "stores.vacant")
						total, _ := fieldpath.Get(snapshot, "stores.total")
						if fieldpath.Number(vacant) > fieldpath.Number(total) {
							return "Vacant stores cannot exceed total stores"
						}
						return ""
					},
				},
			},
			Advisories: []schema.AdvisoryRule{
				{
					Name:  "occupancy-consistency",
					Check: checkOccupancyConsistency,
				},
			},
			Initial: func() map[string]interface{} {
				return map[string]interface{}{
					"name": "",
					"location": map[string]interface{}{
						"city": "",
						"area": "",
					},
					"size": map[string]interface{}{
						"totalArea": 0.0,
						"totalSqm":  0.0,
					},
					"stores": map[string]interface{}{
						"total":  0.0,
						"vacant": 0.0,
					},
					"occupancyRate": 0.0,
					"description":   "",
					"status":        "draft",
					"images":        []string{},
				}
			},
		},
		Steps: []steps.Step{
			{ID: "basic", Title: "Basic Info", RequiredFieldPaths: []string{"name", "location.city"}},
			{ID: "size", Title: "Size & Layout", RequiredFieldPaths: []string{"size.totalArea"}},
			{ID: "stores", Title: "Stores", RequiredFieldPaths: []string{"stores.total"}},
		},
		Derivations: []derive.Rule{
			derive.SqftToSqm("size.totalArea", "size.totalSqm"),
		},
	}
}

// checkOccupancyConsistency compares the reported occupancy rate against
// the rate implied by the store counts and warns when they diverge by more
// than the tolerance band.
func checkOccupancyConsistency(snapshot map[string]interface{}) string {
	totalVal, _ := fieldpath.Get(snapshot, "stores.total")
	vacantVal, _ := fieldpath.Get(snapshot, "stores.vacant")
	rateVal, _ := fieldpath.Get(snapshot, "occupancyRate")

	total := fieldpath.Number(totalVal)
	reported := fieldpath.Number(rateVal)
	if total <= 0 || reported <= 0 {
		return ""
	}

	implied := (total - fieldpath.Number(vacantVal)) / total * 100
	if math.Abs(reported-implied) > OccupancyTolerance*100 {
		return fmt.Sprintf(
			"Occupancy rate %.0f%% does not match store counts (implies %.0f%%)",
			reported, implied,
		)
	}
	return ""
}
