package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"selectionexport/services"
	"selectionexport/testhelpers"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to hyphens", "Kitchen Selection", "Kitchen-Selection"},
		{"slashes to hyphens", "path/to/file", "path-to-file"},
		{"backslashes", "path\\to\\file", "path-to-file"},
		{"colons", "file:name", "file-name"},
		{"mixed", "A / B \\ C : D", "A---B---C---D"},
		{"no special chars", "simple", "simple"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func sampleRows() []services.SelectionRow {
	return []services.SelectionRow{
		{
			Room:     "Kitchen",
			Quantity: 2,
			Product:  &services.ProductRef{OrderCode: "K-100", Description: "Sink Mixer", UnitPrice: "$129.00"},
		},
		{
			Room:     "Bathroom",
			Quantity: 1,
			Product:  &services.ProductRef{OrderCode: "B-200", Description: "Basin"},
		},
	}
}

func postExport(t *testing.T, path string, body any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

func TestHandleSelectionExportPDF_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	assets := services.NewAssetStore(t.TempDir())

	req, rec := postExport(t, "/selections/export/pdf", map[string]any{
		"title": "Smith Residence",
		"rows":  sampleRows(),
	})
	e := newTestRequestEvent(app, req, rec)

	if err := HandleSelectionExportPDF(app, assets)(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("response body is not a PDF")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Smith-Residence") {
		t.Errorf("Content-Disposition = %q, want sanitized title", cd)
	}
}

func TestHandleSelectionExportPDF_WritesExportLog(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	assets := services.NewAssetStore(t.TempDir())

	req, rec := postExport(t, "/selections/export/pdf", map[string]any{
		"title": "Logged",
		"rows":  sampleRows(),
	})
	e := newTestRequestEvent(app, req, rec)

	if err := HandleSelectionExportPDF(app, assets)(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	col, _ := app.FindCollectionByNameOrId("export_logs")
	logs, err := app.FindAllRecords(col)
	if err != nil {
		t.Fatalf("query export_logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 export log, got %d", len(logs))
	}
	if got := logs[0].GetString("format"); got != "pdf" {
		t.Errorf("log format = %q, want %q", got, "pdf")
	}
	if logs[0].GetInt("size_bytes") <= 0 {
		t.Error("log size_bytes should be positive")
	}
}

func TestHandleSelectionExportPDF_EmptyRows(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	assets := services.NewAssetStore(t.TempDir())

	req, rec := postExport(t, "/selections/export/pdf", map[string]any{"title": "Empty"})
	e := newTestRequestEvent(app, req, rec)

	HandleSelectionExportPDF(app, assets)(e)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSelectionExportPDF_BadBody(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	assets := services.NewAssetStore(t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/selections/export/pdf", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	HandleSelectionExportPDF(app, assets)(e)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApplyDefaultStaffProfile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestStaffProfile(t, app, "Default Staff", true)
	testhelpers.CreateTestStaffProfile(t, app, "Other Staff", false)

	var cover services.CoverInfo
	applyDefaultStaffProfile(app, &cover)
	if cover.StaffName != "Default Staff" {
		t.Errorf("StaffName = %q, want %q", cover.StaffName, "Default Staff")
	}
	if cover.Store == "" {
		t.Error("Store should be filled from the default profile")
	}

	// explicit staff details are never overwritten
	cover = services.CoverInfo{StaffName: "Request Staff"}
	applyDefaultStaffProfile(app, &cover)
	if cover.StaffName != "Request Staff" {
		t.Errorf("StaffName = %q, want request value kept", cover.StaffName)
	}
}

func TestHandleSelectionExportCSV_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req, rec := postExport(t, "/selections/export/csv", map[string]any{
		"title": "Smith Residence",
		"rows":  sampleRows(),
	})
	e := newTestRequestEvent(app, req, rec)

	if err := HandleSelectionExportCSV(app)(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "K-100") || !strings.Contains(body, "Kitchen") {
		t.Errorf("csv missing expected content: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
}

func TestHandleSelectionExportExcel_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req, rec := postExport(t, "/selections/export/xlsx", map[string]any{
		"title": "Smith Residence",
		"rows":  sampleRows(),
	})
	e := newTestRequestEvent(app, req, rec)

	if err := HandleSelectionExportExcel(app)(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("response body is not an xlsx archive")
	}
}

func TestHandleSelectionExportEmail_NotConfigured(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	assets := services.NewAssetStore(t.TempDir())

	req, rec := postExport(t, "/selections/export/email", map[string]any{
		"title":      "Smith Residence",
		"rows":       sampleRows(),
		"recipients": []string{"client@example.com"},
	})
	e := newTestRequestEvent(app, req, rec)

	HandleSelectionExportEmail(app, assets, services.EmailConfig{})(e)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleSelectionExportEmail_NoRecipients(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	assets := services.NewAssetStore(t.TempDir())

	req, rec := postExport(t, "/selections/export/email", map[string]any{
		"title": "Smith Residence",
		"rows":  sampleRows(),
	})
	e := newTestRequestEvent(app, req, rec)

	HandleSelectionExportEmail(app, assets, services.EmailConfig{Host: "localhost"})(e)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
