package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Candidate is one detected watermark. It is produced by Detect, handed to
// ApplyRemoval unchanged and then discarded.
type Candidate struct {
	Kind     Kind    `json:"kind"`
	Text     string  `json:"text"`
	BBox     Rect    `json:"bbox"`
	Color    Color   `json:"color"`
	FontSize float64 `json:"fontSize"`
}

// CandidateFromSignature reconstructs a candidate from its rounded signature
func CandidateFromSignature(sig Signature) Candidate {
	return Candidate{
		Kind:     sig.Kind,
		Text:     sig.Text,
		BBox:     sig.BBox(),
		Color:    sig.Color,
		FontSize: sig.FontSize(),
	}
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s %q at %s color %s size %.1f", c.Kind, c.Text, c.BBox, c.Color, c.FontSize)
}

// ParseCandidates decodes a JSON array of candidates as produced by Analyze.
// An empty or blank payload yields no candidates.
func ParseCandidates(data []byte) ([]Candidate, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var out []Candidate
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, Wrap(err, ErrorCodeInvalidParameter, "ParseCandidates", "decode watermarks")
	}
	for i, c := range out {
		if c.Kind == "" {
			return nil, Errorf(ErrorCodeInvalidParameter, "ParseCandidates", "watermark %d has no kind", i)
		}
	}
	return out, nil
}
