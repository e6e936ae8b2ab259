package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// mergeConfiguration returns the pdfcpu configuration for merge output.
// Object streams keep the final binary compact; relaxed validation accepts
// the slightly off-spec documents suppliers tend to upload.
func mergeConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = true
	return conf
}

// MergeDocuments splices optional tip and tail documents around the primary
// document. The final page order is cover, tip pages, remaining primary
// pages, tail pages. Slot failures degrade to warnings and the slot is
// treated as absent; if the primary itself cannot be reopened the primary
// bytes are returned unmodified. The export never fails here.
func MergeDocuments(ctx context.Context, primary []byte, spec MergeSpec, store *AssetStore, fetch Fetcher) ([]byte, []string) {
	var warnings []string

	tip := resolveMergeSlot(ctx, "tip", spec.TipBytes, spec.TipAsset, store, fetch, &warnings)
	tail := resolveMergeSlot(ctx, "tail", spec.TailBytes, spec.TailAsset, store, fetch, &warnings)

	// Identity when no merge was requested.
	if tip == nil && tail == nil {
		return primary, warnings
	}

	conf := mergeConfiguration()

	pageCount, err := documentPageCount(primary, conf)
	if err != nil || pageCount < 1 {
		warnings = append(warnings, fmt.Sprintf("merge: primary document unreadable: %v", err))
		return primary, warnings
	}

	var cover, rest bytes.Buffer
	if err := api.Trim(bytes.NewReader(primary), &cover, []string{"1"}, conf); err != nil {
		warnings = append(warnings, fmt.Sprintf("merge: cover extraction failed: %v", err))
		return primary, warnings
	}
	if pageCount > 1 {
		if err := api.Trim(bytes.NewReader(primary), &rest, []string{"2-"}, conf); err != nil {
			warnings = append(warnings, fmt.Sprintf("merge: content extraction failed: %v", err))
			return primary, warnings
		}
	}

	var readers []io.ReadSeeker
	readers = append(readers, bytes.NewReader(cover.Bytes()))
	if tip != nil {
		readers = append(readers, bytes.NewReader(tip))
	}
	if rest.Len() > 0 {
		readers = append(readers, bytes.NewReader(rest.Bytes()))
	}
	if tail != nil {
		readers = append(readers, bytes.NewReader(tail))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		warnings = append(warnings, fmt.Sprintf("merge: combine failed: %v", err))
		return primary, warnings
	}

	return out.Bytes(), warnings
}

// resolveMergeSlot turns one slot's source into validated PDF bytes, or nil
// when the slot is absent or broken. Uploaded bytes win over an asset
// reference; asset references resolve through the store, or over the network
// for URLs.
func resolveMergeSlot(ctx context.Context, slot string, uploaded []byte, assetRef string, store *AssetStore, fetch Fetcher, warnings *[]string) []byte {
	var data []byte

	switch {
	case len(uploaded) > 0:
		data = uploaded
	case assetRef != "":
		var err error
		data, err = resolveAssetRef(ctx, assetRef, store, fetch)
		if err != nil {
			log.Printf("merge: %s slot %q unavailable: %v", slot, assetRef, err)
			*warnings = append(*warnings, fmt.Sprintf("merge: %s document %q could not be loaded", slot, assetRef))
			return nil
		}
	default:
		return nil
	}

	conf := mergeConfiguration()
	if _, err := documentPageCount(data, conf); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("merge: %s document is not a valid PDF", slot))
		return nil
	}
	return data
}

// resolveAssetRef fetches asset bytes from the store, or over the relay for
// URL references.
func resolveAssetRef(ctx context.Context, ref string, store *AssetStore, fetch Fetcher) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if fetch == nil {
			return nil, fmt.Errorf("no fetcher configured")
		}
		return fetch.Fetch(ctx, ref)
	}
	if store == nil {
		return nil, fmt.Errorf("no asset store configured")
	}
	return store.Resolve(ref)
}

// documentPageCount parses and validates a PDF, returning its page count.
func documentPageCount(data []byte, conf *model.Configuration) (int, error) {
	return api.PageCount(bytes.NewReader(data), conf)
}

// DocumentPageCount reports the page count of a generated document. Exposed
// for handlers and tests asserting merge ordering.
func DocumentPageCount(data []byte) (int, error) {
	return documentPageCount(data, mergeConfiguration())
}
