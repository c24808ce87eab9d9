// internal/entities/blog.go
package entities

import (
	"listings-console/internal/forms/orchestrator"
	"listings-console/internal/forms/schema"
	"listings-console/internal/forms/steps"
)

// BlogDefinition declares the blog post add/edit form. Blog posts have no
// derived fields.
func BlogDefinition() orchestrator.Definition {
	return orchestrator.Definition{
		FormType:   "blog",
		EntityType: "blog",
		Schema: &schema.Schema{
			FormType: "blog",
			Fields: map[string]schema.FieldSpec{
				"title":        {Type: schema.TypeString, Label: "Title", Required: true, MaxLength: 200},
				"slug":         {Type: schema.TypeString, Label: "Slug", Required: true, MaxLength: 120},
				"excerpt":      {Type: schema.TypeString, Label: "Excerpt", MaxLength: 300},
				"content":      {Type: schema.TypeString, Label: "Content", Required: true},
				"tags":         {Type: schema.TypeStringArray, Label: "Tags"},
				"coverImage":   {Type: schema.TypeString, Label: "Cover image", Image: true},
				"published":    {Type: schema.TypeBoolean, Label: "Published"},
				"ui.activeTab": {Type: schema.TypeString, Label: "Active tab", Scaffolding: true},
			},
			Initial: func() map[string]interface{} {
				return map[string]interface{}{
					"title":      "",
					"slug":       "",
					"excerpt":    "",
					"content":    "",
					"tags":       []string{},
					"coverImage": "",
					"published":  false,
				}
			},
		},
		Steps: []steps.Step{
			{ID: "content", Title: "Content", RequiredFieldPaths: []string{"title", "slug", "content"}},
			{ID: "meta", Title: "Metadata", RequiredFieldPaths: []string{}},
		},
	}
}
