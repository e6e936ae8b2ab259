package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"log"

	"github.com/disintegration/imaging"
)

// ImageFormat is the output encoding of a transcoded image.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// CompressionTier selects the fidelity/size trade-off for JPEG output.
type CompressionTier string

const (
	TierStandard CompressionTier = "standard"
	TierCompact  CompressionTier = "compact"
)

// JPEGQuality returns the JPEG quality level for the tier.
func (t CompressionTier) JPEGQuality() int {
	if t == TierCompact {
		return 70
	}
	return 85
}

// MaxDimension returns the pixel cap for the larger image dimension.
func (t CompressionTier) MaxDimension() int {
	if t == TierCompact {
		return 300
	}
	return 500
}

// Encoding is the outcome of the format/quality decision table.
type Encoding struct {
	Format  ImageFormat
	Quality int
}

// chooseEncoding maps an image classification onto an output encoding.
// Technical (line-art) images and images with transparency are kept as PNG
// so edges stay crisp and alpha survives; photographs become JPEG at the
// tier's quality level.
func chooseEncoding(technical, hasAlpha bool, tier CompressionTier) Encoding {
	if technical || hasAlpha {
		return Encoding{Format: FormatPNG, Quality: tier.JPEGQuality()}
	}
	return Encoding{Format: FormatJPEG, Quality: tier.JPEGQuality()}
}

// ImageAsset is one transcoded, embeddable image. Two rows referencing the
// same source URL share one asset via the export-scoped dedup cache.
type ImageAsset struct {
	SourceURL    string
	CacheKey     string
	Format       ImageFormat
	Width        int
	Height       int
	EncodedBytes []byte
}

// ImageCacheKey derives the stable dedup key for a source URL.
func ImageCacheKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])[:16]
}

// Transcoder fetches, classifies and re-encodes remote images. One
// Transcoder is scoped to a single export; its cache is append-only and
// discarded with it.
type Transcoder struct {
	Fetcher Fetcher
	Tier    CompressionTier

	// SkipAll short-circuits every Transcode call; used for
	// email-compatible (text-only) exports.
	SkipAll bool

	cache map[string]*ImageAsset
}

// NewTranscoder returns an export-scoped transcoder.
func NewTranscoder(fetcher Fetcher, tier CompressionTier) *Transcoder {
	if tier == "" {
		tier = TierStandard
	}
	return &Transcoder{
		Fetcher: fetcher,
		Tier:    tier,
		cache:   make(map[string]*ImageAsset),
	}
}

// Transcode resolves a source URL into an embeddable asset. The second
// return is false when the image is skipped: placeholder URL, fetch failure
// on every relay, or an undecodable payload. Failure here is never fatal to
// the export; callers render the row without the image.
func (t *Transcoder) Transcode(ctx context.Context, sourceURL string, maxWidth, maxHeight int) (*ImageAsset, bool) {
	if t.SkipAll || IsPlaceholderURL(sourceURL) {
		return nil, false
	}

	key := ImageCacheKey(sourceURL)
	if asset, ok := t.cache[key]; ok {
		return asset, true
	}

	raw, err := t.Fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		log.Printf("transcode: fetch failed for %s: %v", sourceURL, err)
		return nil, false
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		log.Printf("transcode: decode failed for %s: %v", sourceURL, err)
		return nil, false
	}

	technical := classifyTechnical(img)
	alpha := hasTransparency(img)
	enc := chooseEncoding(technical, alpha, t.Tier)

	resized := scaleToFit(img, maxWidth, maxHeight)

	var buf bytes.Buffer
	switch enc.Format {
	case FormatPNG:
		err = imaging.Encode(&buf, resized, imaging.PNG)
	default:
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(enc.Quality))
	}
	if err != nil {
		log.Printf("transcode: encode failed for %s: %v", sourceURL, err)
		return nil, false
	}

	asset := &ImageAsset{
		SourceURL:    sourceURL,
		CacheKey:     key,
		Format:       enc.Format,
		Width:        resized.Bounds().Dx(),
		Height:       resized.Bounds().Dy(),
		EncodedBytes: buf.Bytes(),
	}
	t.cache[key] = asset

	return asset, true
}

// CachedAssets returns the number of distinct assets embedded so far.
func (t *Transcoder) CachedAssets() int {
	return len(t.cache)
}

// scaleToFit downscales so the larger dimension does not exceed maxWidth,
// preserving aspect ratio. maxHeight acts only as a secondary clamp.
// Images already within bounds are returned untouched.
func scaleToFit(img image.Image, maxWidth, maxHeight int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if maxWidth <= 0 || (w <= maxWidth && h <= maxWidth) {
		return img
	}

	if w >= h {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, maxWidth, imaging.Lanczos)
	}

	if maxHeight > 0 && img.Bounds().Dy() > maxHeight {
		img = imaging.Resize(img, 0, maxHeight, imaging.Lanczos)
	}
	return img
}

const (
	// classification sample is bounded to keep large photos cheap
	sampleGridSize = 64

	technicalColorLimit  = 1000
	technicalEdgeRatio   = 0.10
	technicalSizeCutoff  = 800
	edgeContrastMinDelta = 48
)

// classifyTechnical decides whether an image is line art / a diagram rather
// than a photograph. It samples a bounded grid and applies three
// independent triggers: a small distinct-color count, a high
// neighbor-contrast edge ratio, or small source dimensions.
func classifyTechnical(img image.Image) bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < technicalSizeCutoff && h < technicalSizeCutoff {
		return true
	}

	stepX := max(w/sampleGridSize, 1)
	stepY := max(h/sampleGridSize, 1)

	colors := make(map[uint32]struct{})
	samples := 0
	edges := 0

	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, _ := img.At(x, y).RGBA()
			colors[packRGB(r, g, bl)] = struct{}{}
			samples++

			if x+stepX < b.Max.X {
				r2, g2, b2, _ := img.At(x+stepX, y).RGBA()
				if lumaDelta(r, g, bl, r2, g2, b2) > edgeContrastMinDelta {
					edges++
				}
			}
		}
	}

	if len(colors) < technicalColorLimit {
		return true
	}
	return samples > 0 && float64(edges)/float64(samples) > technicalEdgeRatio
}

// hasTransparency scans the decoded pixel buffer for any alpha below 255.
func hasTransparency(img image.Image) bool {
	nrgba := imaging.Clone(img)
	pix := nrgba.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] < 255 {
			return true
		}
	}
	return false
}

func packRGB(r, g, b uint32) uint32 {
	return (r>>8)<<16 | (g>>8)<<8 | b>>8
}

func lumaDelta(r1, g1, b1, r2, g2, b2 uint32) int {
	l1 := int(299*(r1>>8)+587*(g1>>8)+114*(b1>>8)) / 1000
	l2 := int(299*(r2>>8)+587*(g2>>8)+114*(b2>>8)) / 1000
	if l1 > l2 {
		return l1 - l2
	}
	return l2 - l1
}
