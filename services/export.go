package services

import (
	"context"
	"fmt"
)

// MaxAttachmentBytes is the size ceiling for email-bound exports. Handlers
// re-run oversize exports in email-compatible mode; the pipeline itself
// never fails on size.
const MaxAttachmentBytes = 8 << 20

// MergeSpec names the optional tip (front-matter) and tail (back-matter)
// documents spliced around the generated content. Uploaded bytes take
// precedence over a stored asset reference for the same slot.
type MergeSpec struct {
	TipAsset  string `json:"tipAsset,omitempty"`
	TipBytes  []byte `json:"tipBytes,omitempty"`
	TailAsset string `json:"tailAsset,omitempty"`
	TailBytes []byte `json:"tailBytes,omitempty"`
}

// ExportDeps wires the external collaborators the pipeline consumes.
type ExportDeps struct {
	Fetcher Fetcher
	Assets  *AssetStore
}

// ExportDocument runs the full assembly pipeline: pagination and layout of
// the selection rows, then the tip/tail merge. Transient asset failures and
// malformed rows are absorbed into the summary; only a failure to finalize
// the primary document is returned as an error.
func ExportDocument(ctx context.Context, rows []SelectionRow, opts ExportOptions, cover CoverInfo, merge MergeSpec, deps ExportDeps) ([]byte, ExportSummary, error) {
	fetcher := deps.Fetcher
	if fetcher == nil {
		fetcher = NewRelayFetcher()
	}

	tr := NewTranscoder(fetcher, opts.Tier)
	tr.SkipAll = opts.EmailCompatibleMode

	draft, summary, err := runPagination(ctx, rows, opts, cover, tr)
	if err != nil {
		return nil, summary, fmt.Errorf("export: %w", err)
	}

	final, warnings := MergeDocuments(ctx, draft.Bytes, merge, deps.Assets, fetcher)
	summary.Warnings = append(summary.Warnings, warnings...)

	return final, summary, nil
}
