package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Page geometry. Column positions derive left-to-right from the fixed image
// columns and a fixed right-aligned price block; the description column gets
// whatever grid width remains.
const (
	rowsPerPage = 4

	slotHeight     = 60.0
	roomBandHeight = 6.0

	imageColWidth   = 2 // grid units of 12
	diagramColWidth = 2
	priceColWidth   = 1
	qtyColWidth     = 1
	totalColWidth   = 1
)

// CoverInfo carries the branding block drawn once on the cover page.
type CoverInfo struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	ProjectName   string `json:"projectName"`
	StaffName     string `json:"staffName"`
	StaffEmail    string `json:"staffEmail"`
	StaffPhone    string `json:"staffPhone"`
	Store         string `json:"store"`
	GeneratedAt   string `json:"generatedAt"`
}

// RenderedRow is a selection row with its images resolved (or skipped) and
// its price columns computed, ready for slot drawing.
type RenderedRow struct {
	Row        SelectionRow
	RoomHeader string // non-empty only for the first row of a room group
	Image      *ImageAsset
	Diagram    *ImageAsset
	Price      float64
	PriceOK    bool
}

// PageCursor tracks the layout position while content pages are assembled.
type PageCursor struct {
	PageIndex int
	SlotIndex int
	YOffset   float64
}

// DocumentDraft is the finalized primary document: cover plus content pages.
// Once handed to the merger it is not mutated again.
type DocumentDraft struct {
	Bytes        []byte
	ContentPages int
}

// layoutEngine accumulates rendered rows into fixed-capacity content pages
// and produces the primary document. Pages transition Cover -> ContentPage(1)
// -> ... -> Done; the page-number pass runs at finalize, when the content
// page total is known.
type layoutEngine struct {
	opts   ExportOptions
	cover  CoverInfo
	cursor PageCursor
	pages  [][]core.Row
}

func newLayoutEngine(opts ExportOptions, cover CoverInfo) *layoutEngine {
	return &layoutEngine{opts: opts, cover: cover}
}

// renderRow places one row into the current slot, starting a new content
// page when the slot capacity is exhausted.
func (le *layoutEngine) renderRow(rr RenderedRow) {
	if len(le.pages) == 0 || le.cursor.SlotIndex == rowsPerPage {
		le.pages = append(le.pages, nil)
		le.cursor.PageIndex = len(le.pages) - 1
		le.cursor.SlotIndex = 0
		le.cursor.YOffset = 0
	}

	pi := le.cursor.PageIndex
	le.pages[pi] = append(le.pages[pi], buildSlotRows(rr, le.opts)...)
	le.cursor.SlotIndex++
	le.cursor.YOffset += slotHeight
}

// finalize runs the page-number pass and generates the PDF bytes.
func (le *layoutEngine) finalize() (*DocumentDraft, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	m.AddPages(buildCoverPage(le.cover))

	total := len(le.pages)
	for i, slotRows := range le.pages {
		p := page.New()
		p.Add(buildHeaderBand(le.opts)...)
		p.Add(slotRows...)
		p.Add(buildFooterRow(i+1, total))
		m.AddPages(p)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate selection PDF: %w", err)
	}

	return &DocumentDraft{Bytes: doc.GetBytes(), ContentPages: total}, nil
}

// buildCoverPage draws the branding block, customer and staff details and
// the generated timestamp.
func buildCoverPage(cover CoverInfo) core.Page {
	p := page.New()

	// Brand block
	p.Add(row.New(30))
	p.Add(
		row.New(16).Add(
			col.New(12).Add(
				text.New("Product Selection", props.Text{
					Size:  24,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
		row.New(8).Add(
			col.New(12).Add(
				text.New(cover.ProjectName, props.Text{
					Size:  12,
					Align: align.Center,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
		row.New(4).Add(
			col.New(12).Add(
				line.New(props.Line{
					Color:     &props.Color{Red: 33, Green: 37, Blue: 41},
					Thickness: 0.6,
				}),
			),
		),
	)

	p.Add(row.New(12))

	// Customer / staff blocks side by side
	sectionLabel := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Left,
		Color: &props.Color{Red: 100, Green: 100, Blue: 100},
	}
	valueStyle := props.Text{
		Size:  10,
		Align: align.Left,
	}
	boldValue := props.Text{
		Size:  10,
		Style: fontstyle.Bold,
		Align: align.Left,
	}

	p.Add(
		row.New(7).Add(
			col.New(6).Add(text.New("PREPARED FOR", sectionLabel)),
			col.New(6).Add(text.New("PREPARED BY", sectionLabel)),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(cover.CustomerName, boldValue)),
			col.New(6).Add(text.New(cover.StaffName, boldValue)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New(cover.CustomerEmail, valueStyle)),
			col.New(6).Add(text.New(cover.StaffEmail, valueStyle)),
		),
		row.New(6).Add(
			col.New(6).Add(text.New(cover.CustomerPhone, valueStyle)),
			col.New(6).Add(text.New(cover.StaffPhone, valueStyle)),
		),
	)

	if cover.Store != "" {
		p.Add(
			row.New(6).Add(
				col.New(6),
				col.New(6).Add(text.New(cover.Store, valueStyle)),
			),
		)
	}

	p.Add(row.New(140))

	// Footer band with the generated timestamp
	p.Add(
		row.New(6).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Generated on %s", cover.GeneratedAt), props.Text{
					Size:  7,
					Align: align.Left,
					Color: &props.Color{Red: 140, Green: 140, Blue: 140},
				}),
			),
		),
	)

	return p
}

// buildHeaderBand draws the per-page header: brand line plus column titles.
// Price/quantity titles are omitted together with their columns.
func buildHeaderBand(opts ExportOptions) []core.Row {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerCell := props.Cell{BackgroundColor: headerBg}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerTextRight := headerText
	headerTextRight.Align = align.Right

	brand := row.New(8).Add(
		col.New(8).Add(
			text.New("Product Selection", props.Text{
				Size:  11,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
		),
		col.New(4).Add(
			text.New("Selection Summary", props.Text{
				Size:  8,
				Align: align.Right,
				Color: &props.Color{Red: 120, Green: 120, Blue: 120},
			}),
		),
	)

	cols := []core.Col{
		col.New(imageColWidth).Add(text.New("Image", headerText)).WithStyle(&headerCell),
		col.New(diagramColWidth).Add(text.New("Diagram", headerText)).WithStyle(&headerCell),
		col.New(descColumnWidth(opts)).Add(text.New("Product", headerTextLeft)).WithStyle(&headerCell),
	}
	if !opts.ExcludePrice {
		cols = append(cols, col.New(priceColWidth).Add(text.New("Price", headerTextRight)).WithStyle(&headerCell))
	}
	if !opts.ExcludeQuantity {
		cols = append(cols, col.New(qtyColWidth).Add(text.New("Qty", headerText)).WithStyle(&headerCell))
	}
	if !opts.ExcludePrice {
		cols = append(cols, col.New(totalColWidth).Add(text.New("Total", headerTextRight)).WithStyle(&headerCell))
	}

	titles := row.New(7).Add(cols...)

	return []core.Row{brand, titles}
}

// descColumnWidth derives the description column from what the fixed image
// columns and the right-aligned price block leave over.
func descColumnWidth(opts ExportOptions) int {
	w := 12 - imageColWidth - diagramColWidth
	if !opts.ExcludePrice {
		w -= priceColWidth + totalColWidth
	}
	if !opts.ExcludeQuantity {
		w -= qtyColWidth
	}
	return w
}

// buildSlotRows renders one fixed-height row slot: optional room band, then
// images, product text stack and the price block.
func buildSlotRows(rr RenderedRow, opts ExportOptions) []core.Row {
	var rows []core.Row

	contentHeight := slotHeight
	if rr.RoomHeader != "" {
		roomBg := &props.Color{Red: 245, Green: 243, Blue: 239}
		rows = append(rows, row.New(roomBandHeight).Add(
			col.New(12).Add(
				text.New(rr.RoomHeader, props.Text{
					Size:  9,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			).WithStyle(&props.Cell{BackgroundColor: roomBg}),
		))
		contentHeight -= roomBandHeight
	}

	cols := []core.Col{
		buildImageCol(imageColWidth, rr.Image),
		buildImageCol(diagramColWidth, rr.Diagram),
		buildProductCol(rr, opts),
	}
	cols = append(cols, buildPriceCols(rr, opts)...)

	rows = append(rows, row.New(contentHeight).Add(cols...))
	return rows
}

// buildImageCol places a transcoded asset, or leaves the region empty when
// the image was skipped.
func buildImageCol(width int, asset *ImageAsset) core.Col {
	c := col.New(width)
	if asset == nil {
		return c
	}

	ext := extension.Jpg
	if asset.Format == FormatPNG {
		ext = extension.Png
	}

	return c.Add(image.NewFromBytes(asset.EncodedBytes, ext, props.Rect{
		Center:  true,
		Percent: 90,
	}))
}

// buildProductCol stacks order code, links, description, long description
// and notes; each block wraps within the column width.
func buildProductCol(rr RenderedRow, opts ExportOptions) core.Col {
	p := rr.Row.Product

	c := col.New(descColumnWidth(opts))
	c.Add(text.New(p.OrderCode, props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Left,
	}))

	top := 5.0
	linkStyle := props.Text{
		Size:  6,
		Align: align.Left,
		Color: &props.Color{Red: 13, Green: 110, Blue: 253},
	}
	if p.DatasheetURL != "" {
		ds := linkStyle
		ds.Top = top
		ds.Hyperlink = &p.DatasheetURL
		c.Add(text.New("Datasheet", ds))
		top += 4
	}
	if p.WebsiteURL != "" {
		ws := linkStyle
		ws.Top = top
		ws.Hyperlink = &p.WebsiteURL
		c.Add(text.New("Website", ws))
		top += 4
	}

	c.Add(text.New(p.Description, props.Text{
		Top:   top + 2,
		Size:  8,
		Align: align.Left,
	}))
	if p.LongDescription != "" {
		c.Add(text.New(p.LongDescription, props.Text{
			Top:   top + 14,
			Size:  7,
			Align: align.Left,
			Color: &props.Color{Red: 80, Green: 80, Blue: 80},
		}))
	}

	notes := rr.Row.Notes
	if notes == "" {
		notes = p.Notes
	}
	if notes != "" {
		c.Add(text.New(fmt.Sprintf("Note: %s", notes), props.Text{
			Top:   top + 32,
			Size:  7,
			Style: fontstyle.Italic,
			Align: align.Left,
			Color: &props.Color{Red: 100, Green: 100, Blue: 100},
		}))
	}

	return c
}

// buildPriceCols renders the right-aligned price block. Unparseable or
// non-positive prices leave the price and total cells empty.
func buildPriceCols(rr RenderedRow, opts ExportOptions) []core.Col {
	valueRight := props.Text{Size: 8, Align: align.Right}
	valueCenter := props.Text{Size: 8, Align: align.Center}

	priceStr := ""
	totalStr := ""
	if rr.PriceOK {
		priceStr = FormatMoney(rr.Price)
		totalStr = FormatMoney(LineTotal(rr.Price, rr.Row.Quantity))
	}

	var cols []core.Col
	if !opts.ExcludePrice {
		cols = append(cols, col.New(priceColWidth).Add(text.New(priceStr, valueRight)))
	}
	if !opts.ExcludeQuantity {
		cols = append(cols, col.New(qtyColWidth).Add(text.New(fmt.Sprintf("%d", rr.Row.Quantity), valueCenter)))
	}
	if !opts.ExcludePrice {
		cols = append(cols, col.New(totalColWidth).Add(text.New(totalStr, valueRight)))
	}
	return cols
}

// buildFooterRow draws the content-page footer; the page count excludes the
// cover page.
func buildFooterRow(pageNum, totalPages int) core.Row {
	return row.New(6).Add(
		col.New(6).Add(
			text.New("Product Selection", props.Text{
				Size:  7,
				Align: align.Left,
				Color: &props.Color{Red: 140, Green: 140, Blue: 140},
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Page %d of %d", pageNum, totalPages), props.Text{
				Size:  7,
				Align: align.Right,
				Color: &props.Color{Red: 120, Green: 120, Blue: 120},
			}),
		),
	)
}
