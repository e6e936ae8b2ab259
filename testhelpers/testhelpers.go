// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"selectionexport/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestStaffProfile creates a staff profile record and returns it.
func CreateTestStaffProfile(t *testing.T, app *pocketbase.PocketBase, name string, isDefault bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("staff_profiles")
	if err != nil {
		t.Fatalf("failed to find staff_profiles collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("email", "staff@example.com")
	record.Set("store", "Test Showroom")
	record.Set("is_default", isDefault)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test staff profile: %v", err)
	}

	return record
}
