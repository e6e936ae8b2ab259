package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the staff_profiles and export_logs
// collections exist.
func Setup(app *pocketbase.PocketBase) {
	ensureCollection(app, "staff_profiles", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "email", Required: false})
		c.Fields.Add(&core.TextField{Name: "phone", Required: false})
		c.Fields.Add(&core.TextField{Name: "store", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_default"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "export_logs", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "filename", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "format",
			Required:  true,
			Values:    []string{"pdf", "csv", "xlsx", "email"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "size_bytes"})
		c.Fields.Add(&core.NumberField{Name: "images_optimized"})
		c.Fields.Add(&core.NumberField{Name: "images_skipped"})
		c.Fields.Add(&core.NumberField{Name: "rows_skipped"})
		c.Fields.Add(&core.JSONField{Name: "warnings"})
		c.Fields.Add(&core.BoolField{Name: "email_compatible"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
