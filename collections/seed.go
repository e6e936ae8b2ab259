package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Seed inserts a default staff profile for the cover branding block. It is
// safe to call on every startup because it returns early when any profile
// already exists.
func Seed(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("staff_profiles")
	if err != nil {
		return fmt.Errorf("seed: could not find staff_profiles collection: %w", err)
	}
	existing, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("seed: could not query staff_profiles: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: staff_profiles is empty, inserting default profile")

	r := core.NewRecord(col)
	r.Set("name", "Showroom Team")
	r.Set("email", "showroom@example.com")
	r.Set("phone", "1300 000 000")
	r.Set("store", "Main Showroom")
	r.Set("is_default", true)
	if err := app.Save(r); err != nil {
		return fmt.Errorf("seed: save default staff profile: %w", err)
	}

	log.Println("seed: default staff profile inserted successfully")
	return nil
}
