package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed 0xRRGGBB value as reported by the access layer
type Color uint32

// White is opaque white, the default redaction fill
const White Color = 0xFFFFFF

// RGB returns the color as three components in [0, 1]
func (c Color) RGB() [3]float64 {
	return [3]float64{
		float64((c>>16)&0xFF) / 255,
		float64((c>>8)&0xFF) / 255,
		float64(c&0xFF) / 255,
	}
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// ParseFill parses a redaction fill: a color name, "#RRGGBB", or
// "none"/"transparent" which yields nil.
func ParseFill(s string) (*Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	var c Color
	switch v {
	case "none", "transparent":
		return nil, nil
	case "", "white":
		c = White
	case "black":
		c = 0x000000
	default:
		hex := strings.TrimPrefix(v, "#")
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return nil, Errorf(ErrorCodeInvalidParameter, "ParseFill", "invalid fill %q (use white, black, none or #RRGGBB)", s)
		}
		c = Color(n)
	}
	return &c, nil
}

// TextSpan is one text fragment of a page: a run of characters sharing font, size and color
type TextSpan struct {
	Text     string
	BBox     Rect
	Color    Color
	FontSize float64
	Font     string
}

// ImagePolicy says what applying redactions does to images under a redaction area
type ImagePolicy string

const (
	// ImagesNone leaves images untouched
	ImagesNone ImagePolicy = "none"
	// ImagesRemove drops any image overlapping a redaction
	ImagesRemove ImagePolicy = "remove"
	// ImagesPixels blanks only the covered pixels
	ImagesPixels ImagePolicy = "pixels"
)

// ParseImagePolicy maps a config string to an ImagePolicy
func ParseImagePolicy(s string) (ImagePolicy, error) {
	switch ImagePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImagesNone:
		return ImagesNone, nil
	case ImagesRemove:
		return ImagesRemove, nil
	case ImagesPixels:
		return ImagesPixels, nil
	}
	return "", Errorf(ErrorCodeInvalidParameter, "ParseImagePolicy", "unknown image policy %q (supported: none, remove, pixels)", s)
}

// Redaction marks one rectangle for removal. A nil Fill leaves the area transparent.
type Redaction struct {
	Rect Rect
	Fill *Color
}

// RedactOptions controls how marked redactions are committed
type RedactOptions struct {
	Images ImagePolicy
}

// SaveOptions controls document export
type SaveOptions struct {
	// Garbage is the unused-object collection level (0-4)
	Garbage int
	// Compress deflates streams
	Compress bool
}

// DefaultSaveOptions mirror the cleanup the tool always applies on export
var DefaultSaveOptions = SaveOptions{Garbage: 4, Compress: true}

// Document is an opened document owned by one analyze or remove call
type Document interface {
	// PageCount returns the total number of pages
	PageCount() int
	// Page returns the page handle for a 0-based index
	Page(ctx context.Context, index int) (Page, error)
	// Close releases the handle, safe to call more than once
	Close() error
}

// Page is a single page handle. Implementations need not be safe for
// concurrent use; callers never share one Page between goroutines.
type Page interface {
	Index() int
	// Spans returns every text fragment on the page, including nested line/block structures
	Spans(ctx context.Context) ([]TextSpan, error)
	// Search returns the rectangle of each exact occurrence of text
	Search(ctx context.Context, text string) ([]Rect, error)
	// AddRedaction marks a rectangle for removal, nothing changes until ApplyRedactions
	AddRedaction(r Redaction)
	// ApplyRedactions commits all marks added so far in one pass
	ApplyRedactions(ctx context.Context, opts RedactOptions) error
}

// Prefetcher is implemented by documents that can load many pages in one round-trip
type Prefetcher interface {
	Prefetch(ctx context.Context, pages []int) error
}

// Saver is implemented by documents that can export their in-memory state
type Saver interface {
	Save(ctx context.Context, path string, opts SaveOptions) error
}

// Opener opens documents from a path or raw bytes
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
	OpenBytes(ctx context.Context, data []byte) (Document, error)
}
