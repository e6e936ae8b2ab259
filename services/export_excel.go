package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateExcel creates an Excel workbook of the selection, room-grouped in
// the same order as the PDF, and returns the file contents.
func GenerateExcel(rows []SelectionRow, opts ExportOptions, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet name (max 31 chars).
	sheetName := title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Selection"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headers := []string{"Room", "Order Code", "Description", "Notes"}
	widths := []float64{18, 14, 46, 30}
	if !opts.ExcludeQuantity {
		headers = append(headers, "Qty")
		widths = append(widths, 8)
	}
	if !opts.ExcludePrice {
		headers = append(headers, "Price", "Total")
		widths = append(widths, 14, 14)
	}

	columns := make([]string, len(headers))
	for i := range headers {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		columns[i] = name
	}
	lastCol := columns[len(columns)-1]

	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	roomStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#F5F3EF"},
			Pattern: 1,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create room style: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 10,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create data style: %w", err)
	}

	// ── Header Rows ─────────────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", "Product Selection")
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+"3", h)
	}
	f.SetCellStyle(sheetName, "A3", lastCol+"3", headerStyle)

	// ── Data Rows ───────────────────────────────────────────────────────

	row := 4
	for _, group := range GroupRowsByRoom(rows, nil) {
		rowStr := fmt.Sprintf("%d", row)
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge room: %w", err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(group.Room))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, roomStyle)
		row++

		for _, r := range group.Rows {
			rowStr := fmt.Sprintf("%d", row)

			values := []any{
				sanitizeExcelCell(group.Room),
				sanitizeExcelCell(r.Product.OrderCode),
				sanitizeExcelCell(r.Product.Description),
				sanitizeExcelCell(r.Notes),
			}
			if !opts.ExcludeQuantity {
				values = append(values, r.Quantity)
			}
			if !opts.ExcludePrice {
				if price, ok := ParsePrice(r.Product.UnitPrice); ok {
					values = append(values, FormatMoney(price), FormatMoney(LineTotal(price, r.Quantity)))
				} else {
					values = append(values, "", "")
				}
			}

			for i, v := range values {
				f.SetCellValue(sheetName, columns[i]+rowStr, v)
			}
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, dataStyle)
			row++
		}
	}

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
