package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"selectionexport/services"
)

// exportRequest is the JSON body shared by all export endpoints.
type exportRequest struct {
	Title      string                  `json:"title"`
	Rows       []services.SelectionRow `json:"rows"`
	Options    services.ExportOptions  `json:"options"`
	Cover      services.CoverInfo      `json:"cover"`
	Merge      services.MergeSpec      `json:"merge"`
	Recipients []string                `json:"recipients"`
	Message    string                  `json:"message"`
}

// decodeExportRequest parses and minimally validates the request body.
func decodeExportRequest(e *core.RequestEvent) (exportRequest, error) {
	var req exportRequest
	if err := json.NewDecoder(e.Request.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if len(req.Rows) == 0 {
		return req, fmt.Errorf("no selection rows provided")
	}
	if req.Title == "" {
		req.Title = "Selection"
	}
	if req.Cover.GeneratedAt == "" {
		req.Cover.GeneratedAt = time.Now().Format("02 Jan 2006")
	}
	return req, nil
}

// applyDefaultStaffProfile fills empty staff fields on the cover from the
// default staff profile, when one exists.
func applyDefaultStaffProfile(app *pocketbase.PocketBase, cover *services.CoverInfo) {
	if cover.StaffName != "" {
		return
	}
	records, err := app.FindRecordsByFilter("staff_profiles", "is_default = true", "", 1, 0)
	if err != nil || len(records) == 0 {
		return
	}
	r := records[0]
	cover.StaffName = r.GetString("name")
	cover.StaffEmail = r.GetString("email")
	cover.StaffPhone = r.GetString("phone")
	if cover.Store == "" {
		cover.Store = r.GetString("store")
	}
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// logExport records an export_logs row. Logging failures are non-fatal.
func logExport(app *pocketbase.PocketBase, format, filename string, size int, opts services.ExportOptions, summary services.ExportSummary) {
	col, err := app.FindCollectionByNameOrId("export_logs")
	if err != nil {
		log.Printf("export_log: collection unavailable: %v", err)
		return
	}
	r := core.NewRecord(col)
	r.Set("format", format)
	r.Set("filename", filename)
	r.Set("size_bytes", size)
	r.Set("images_optimized", summary.ImagesOptimized)
	r.Set("images_skipped", summary.ImagesSkipped)
	r.Set("rows_skipped", summary.RowsSkipped)
	r.Set("warnings", summary.Warnings)
	r.Set("email_compatible", opts.EmailCompatibleMode)
	if err := app.Save(r); err != nil {
		log.Printf("export_log: save failed: %v", err)
	}
}

// HandleSelectionExportPDF returns a handler that assembles and downloads the
// selection document as a PDF.
func HandleSelectionExportPDF(app *pocketbase.PocketBase, assets *services.AssetStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := decodeExportRequest(e)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		applyDefaultStaffProfile(app, &req.Cover)

		deps := services.ExportDeps{Assets: assets}
		pdfBytes, summary, err := services.ExportDocument(e.Request.Context(), req.Rows, req.Options, req.Cover, req.Merge, deps)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s_%d.pdf", sanitizeFilename(req.Title), time.Now().Year())
		logExport(app, "pdf", filename, len(pdfBytes), req.Options, summary)

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Header().Set("X-Export-Summary", summaryHeader(summary))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// HandleSelectionExportCSV returns a handler that downloads the selection as CSV.
func HandleSelectionExportCSV(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := decodeExportRequest(e)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		csvBytes, err := services.GenerateCSV(req.Rows, req.Options)
		if err != nil {
			log.Printf("export_csv: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate CSV file")
		}

		filename := fmt.Sprintf("%s_%d.csv", sanitizeFilename(req.Title), time.Now().Year())
		logExport(app, "csv", filename, len(csvBytes), req.Options, services.ExportSummary{})

		e.Response.Header().Set("Content-Type", "text/csv")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(csvBytes)
		return nil
	}
}

// HandleSelectionExportExcel returns a handler that downloads the selection
// as an Excel workbook.
func HandleSelectionExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := decodeExportRequest(e)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		xlsxBytes, err := services.GenerateExcel(req.Rows, req.Options, req.Title)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s_%d.xlsx", sanitizeFilename(req.Title), time.Now().Year())
		logExport(app, "xlsx", filename, len(xlsxBytes), req.Options, services.ExportSummary{})

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleSelectionExportEmail returns a handler that assembles the document
// and sends it as an email attachment. When the document exceeds the
// attachment ceiling the export is re-run in email-compatible (text-only)
// mode before giving up.
func HandleSelectionExportEmail(app *pocketbase.PocketBase, assets *services.AssetStore, smtp services.EmailConfig) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		req, err := decodeExportRequest(e)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}
		if len(req.Recipients) == 0 {
			return e.String(http.StatusBadRequest, "No recipients provided")
		}
		if !smtp.Configured() {
			return e.String(http.StatusServiceUnavailable, "Email delivery is not configured")
		}

		applyDefaultStaffProfile(app, &req.Cover)

		ctx := e.Request.Context()
		deps := services.ExportDeps{Assets: assets}

		pdfBytes, summary, err := services.ExportDocument(ctx, req.Rows, req.Options, req.Cover, req.Merge, deps)
		if err != nil {
			log.Printf("export_email: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		opts := req.Options
		if len(pdfBytes) > services.MaxAttachmentBytes && !opts.EmailCompatibleMode {
			log.Printf("export_email: document too large (%d bytes), retrying without images", len(pdfBytes))
			opts.EmailCompatibleMode = true
			pdfBytes, summary, err = services.ExportDocument(ctx, req.Rows, opts, req.Cover, req.Merge, deps)
			if err != nil {
				log.Printf("export_email: retry failed: %v", err)
				return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
			}
		}
		if len(pdfBytes) > services.MaxAttachmentBytes {
			return e.String(http.StatusRequestEntityTooLarge, "Document exceeds the attachment size limit")
		}

		csvBytes, err := services.GenerateCSV(req.Rows, opts)
		if err != nil {
			log.Printf("export_email: csv generation failed: %v", err)
			csvBytes = nil
		}

		filename := fmt.Sprintf("%s_%d.pdf", sanitizeFilename(req.Title), time.Now().Year())
		body := req.Message
		if body == "" {
			body = fmt.Sprintf("Please find the %s selection attached.", req.Title)
		}

		mail := services.ExportMail{
			To:      req.Recipients,
			Subject: fmt.Sprintf("Selection: %s", req.Title),
			Body:    body,
			PDFName: filename,
			PDF:     pdfBytes,
			CSVName: strings.TrimSuffix(filename, ".pdf") + ".csv",
			CSV:     csvBytes,
		}
		if err := services.SendExportMail(smtp, mail); err != nil {
			log.Printf("export_email: %v", err)
			return e.String(http.StatusBadGateway, "Failed to send email")
		}

		logExport(app, "email", filename, len(pdfBytes), opts, summary)

		return e.JSON(http.StatusOK, map[string]any{
			"sent":    true,
			"summary": summary,
		})
	}
}

// summaryHeader compacts the summary into a single header value.
func summaryHeader(s services.ExportSummary) string {
	return fmt.Sprintf("optimized=%d skipped=%d rowsSkipped=%d warnings=%d",
		s.ImagesOptimized, s.ImagesSkipped, s.RowsSkipped, len(s.Warnings))
}
