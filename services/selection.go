package services

import "log"

// ProductRef holds the catalogue fields a selection row renders.
// It is read-only for the duration of an export.
type ProductRef struct {
	OrderCode       string `json:"orderCode"`
	Description     string `json:"description"`
	LongDescription string `json:"longDescription"`
	Notes           string `json:"notes"`
	ImageURL        string `json:"imageUrl"`
	DiagramURL      string `json:"diagramUrl"`
	DatasheetURL    string `json:"datasheetUrl"`
	WebsiteURL      string `json:"websiteUrl"`
	UnitPrice       string `json:"unitPrice"` // raw catalogue string, may be empty
}

// SelectionRow is one line item: a product placed in a room with a quantity.
type SelectionRow struct {
	Product  *ProductRef `json:"product"`
	Room     string      `json:"room"`
	Notes    string      `json:"notes"`
	Quantity int         `json:"quantity"`
}

// RoomGroup is an ordered run of rows sharing a room.
type RoomGroup struct {
	Room string
	Rows []SelectionRow
}

// ExportOptions controls which columns are rendered and how images are handled.
type ExportOptions struct {
	ExcludePrice        bool            `json:"excludePrice"`
	ExcludeQuantity     bool            `json:"excludeQuantity"`
	EmailCompatibleMode bool            `json:"emailCompatibleMode"`
	Tier                CompressionTier `json:"tier"`
}

// ExportSummary reports what happened during one export. It is informational
// only and scoped to a single ExportDocument call.
type ExportSummary struct {
	ImagesOptimized int      `json:"imagesOptimized"`
	ImagesSkipped   int      `json:"imagesSkipped"`
	RowsSkipped     int      `json:"rowsSkipped"`
	Warnings        []string `json:"warnings,omitempty"`
}

// GroupRowsByRoom groups rows by room, preserving the first-appearance order
// of rooms and the insertion order of rows within each room. Rows with a nil
// product or a non-positive quantity are counted as skipped and logged; they
// never abort the export.
func GroupRowsByRoom(rows []SelectionRow, summary *ExportSummary) []RoomGroup {
	var groups []RoomGroup
	index := make(map[string]int)

	for i, r := range rows {
		if r.Product == nil || r.Quantity < 1 {
			log.Printf("selection: skipping malformed row %d (room=%q)", i, r.Room)
			if summary != nil {
				summary.RowsSkipped++
			}
			continue
		}
		gi, ok := index[r.Room]
		if !ok {
			gi = len(groups)
			index[r.Room] = gi
			groups = append(groups, RoomGroup{Room: r.Room})
		}
		groups[gi].Rows = append(groups[gi].Rows, r)
	}

	return groups
}

// CountRows returns the total row count across all groups.
func CountRows(groups []RoomGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Rows)
	}
	return n
}
