package services

import (
	"context"
	"strings"
)

// runPagination drives the layout engine one row at a time. Rows are grouped
// by room in first-appearance order; within a room insertion order is kept.
// Image transcoding is strictly sequential so at most one row's images are
// in flight and text never races image placement.
func runPagination(ctx context.Context, rows []SelectionRow, opts ExportOptions, cover CoverInfo, tr *Transcoder) (*DocumentDraft, ExportSummary, error) {
	var summary ExportSummary

	groups := GroupRowsByRoom(rows, &summary)
	engine := newLayoutEngine(opts, cover)

	maxDim := tr.Tier.MaxDimension()

	for _, group := range groups {
		for i, row := range group.Rows {
			rr := RenderedRow{Row: row}
			if i == 0 {
				rr.RoomHeader = group.Room
			}

			// Product image first, then diagram, then text; the row is
			// not drawn until both resolve or skip.
			rr.Image = resolveImage(ctx, tr, row.Product.ImageURL, maxDim, &summary)
			rr.Diagram = resolveImage(ctx, tr, row.Product.DiagramURL, maxDim, &summary)

			rr.Price, rr.PriceOK = ParsePrice(row.Product.UnitPrice)

			engine.renderRow(rr)
		}
	}

	draft, err := engine.finalize()
	if err != nil {
		return nil, summary, err
	}
	return draft, summary, nil
}

// resolveImage transcodes one image reference and updates the summary
// counters. Placeholder and empty references count as neither optimized nor
// skipped.
func resolveImage(ctx context.Context, tr *Transcoder, sourceURL string, maxDim int, summary *ExportSummary) *ImageAsset {
	if strings.TrimSpace(sourceURL) == "" {
		return nil
	}
	asset, ok := tr.Transcode(ctx, sourceURL, maxDim, maxDim)
	if !ok {
		summary.ImagesSkipped++
		return nil
	}
	summary.ImagesOptimized++
	return asset
}
