package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// GenerateCSV writes the selection as a sanitized, quoted CSV side file.
// Rows appear in the same room-grouped order as the PDF. Price and quantity
// columns honor the export options; unparseable prices leave empty cells.
func GenerateCSV(rows []SelectionRow, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Room", "Order Code", "Description"}
	if !opts.ExcludeQuantity {
		header = append(header, "Quantity")
	}
	if !opts.ExcludePrice {
		header = append(header, "Price", "Total")
	}
	header = append(header, "Notes")
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}

	for _, group := range GroupRowsByRoom(rows, nil) {
		for _, r := range group.Rows {
			record := []string{
				sanitizeCSVField(group.Room),
				sanitizeCSVField(r.Product.OrderCode),
				sanitizeCSVField(r.Product.Description),
			}
			if !opts.ExcludeQuantity {
				record = append(record, fmt.Sprintf("%d", r.Quantity))
			}
			if !opts.ExcludePrice {
				price, ok := ParsePrice(r.Product.UnitPrice)
				if ok {
					record = append(record,
						FormatMoney(price),
						FormatMoney(LineTotal(price, r.Quantity)))
				} else {
					record = append(record, "", "")
				}
			}
			record = append(record, sanitizeCSVField(r.Notes))

			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("csv export: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeCSVField collapses control characters into spaces so a field
// never breaks the record structure, then trims.
func sanitizeCSVField(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
