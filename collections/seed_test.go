package collections_test

import (
	"testing"

	"selectionexport/collections"
	"selectionexport/testhelpers"
)

func TestSeed_CreatesDefaultProfile(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	col, _ := app.FindCollectionByNameOrId("staff_profiles")
	profiles, err := app.FindAllRecords(col)
	if err != nil {
		t.Fatalf("query staff_profiles error: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 staff profile, got %d", len(profiles))
	}
	if !profiles[0].GetBool("is_default") {
		t.Error("seeded profile should be marked is_default")
	}
	if profiles[0].GetString("name") == "" {
		t.Error("seeded profile has empty name")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	col, _ := app.FindCollectionByNameOrId("staff_profiles")
	profiles, _ := app.FindAllRecords(col)
	if len(profiles) != 1 {
		t.Errorf("expected 1 staff profile after double seed, got %d", len(profiles))
	}
}

func TestSeed_SkipsWhenProfilesExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestStaffProfile(t, app, "Existing Staff", false)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	col, _ := app.FindCollectionByNameOrId("staff_profiles")
	profiles, _ := app.FindAllRecords(col)
	if len(profiles) != 1 {
		t.Errorf("expected existing profile to be left alone, got %d records", len(profiles))
	}
}
