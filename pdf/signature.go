package pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind tags what sort of element a signature or candidate describes
type Kind string

const (
	// KindText is a text fragment
	KindText Kind = "text"
	// KindImage is reserved for image watermarks, never produced today
	KindImage Kind = "image"
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k == KindText || k == KindImage
}

// UnmarshalJSON rejects kinds outside the closed set
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Kind(s).Valid() {
		return fmt.Errorf("unknown candidate kind %q", s)
	}
	*k = Kind(s)
	return nil
}

// Signature is the rounded identity of a span used for counting.
// Two spans with equal signatures count as the same watermark occurrence.
type Signature struct {
	Kind       Kind
	Text       string
	Box        [4]int
	Color      Color
	SizeTenths int
}

// FontSize returns the rounded font size
func (s Signature) FontSize() float64 {
	return float64(s.SizeTenths) / 10
}

// BBox rebuilds the reference rectangle from the rounded box
func (s Signature) BBox() Rect {
	return Rect{
		X0: float64(s.Box[0]),
		Y0: float64(s.Box[1]),
		X1: float64(s.Box[2]),
		Y1: float64(s.Box[3]),
	}
}

// roundHalfEven rounds to the nearest integer, ties to even
func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}

// SignatureOf normalizes a span. ok is false for spans with no visible text.
func SignatureOf(span TextSpan) (Signature, bool) {
	text := strings.TrimSpace(span.Text)
	if text == "" {
		return Signature{}, false
	}
	return Signature{
		Kind: KindText,
		Text: text,
		Box: [4]int{
			roundHalfEven(span.BBox.X0),
			roundHalfEven(span.BBox.Y0),
			roundHalfEven(span.BBox.X1),
			roundHalfEven(span.BBox.Y1),
		},
		Color:      span.Color,
		SizeTenths: roundHalfEven(span.FontSize * 10),
	}, true
}

// ExtractSignatures returns the signature of every non-empty span on page
func ExtractSignatures(ctx context.Context, page Page) ([]Signature, error) {
	spans, err := page.Spans(ctx)
	if err != nil {
		return nil, Wrap(err, ErrorCodePageAccess, "ExtractSignatures", fmt.Sprintf("extract text from page %d", page.Index()))
	}
	sigs := make([]Signature, 0, len(spans))
	for _, span := range spans {
		if sig, ok := SignatureOf(span); ok {
			sigs = append(sigs, sig)
		}
	}
	return sigs, nil
}
