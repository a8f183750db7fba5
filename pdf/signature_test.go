package pdf

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureOf(t *testing.T) {
	span := TextSpan{
		Text:     "  CONFIDENTIAL \n",
		BBox:     NewRect(100.4, 200.5, 300.6, 221.5),
		Color:    0xFF0000,
		FontSize: 35.96,
	}
	s, ok := SignatureOf(span)
	require.True(t, ok)
	assert.Equal(t, KindText, s.Kind)
	assert.Equal(t, "CONFIDENTIAL", s.Text)
	// ties round to even
	assert.Equal(t, [4]int{100, 200, 301, 222}, s.Box)
	assert.Equal(t, Color(0xFF0000), s.Color)
	assert.Equal(t, 36.0, s.FontSize())
}

func TestSignatureOf_AbsorbsJitter(t *testing.T) {
	a, _ := SignatureOf(TextSpan{Text: "WM", BBox: NewRect(10.2, 20.1, 50.3, 30.4), FontSize: 12.01})
	b, _ := SignatureOf(TextSpan{Text: "WM", BBox: NewRect(9.8, 19.9, 49.7, 29.6), FontSize: 11.99})
	assert.Equal(t, a, b)

	c, _ := SignatureOf(TextSpan{Text: "WM", BBox: NewRect(10.2, 20.1, 50.3, 30.4), FontSize: 12.2})
	assert.NotEqual(t, a, c)
}

func TestSignatureOf_SkipsBlank(t *testing.T) {
	_, ok := SignatureOf(TextSpan{Text: " \t\n"})
	assert.False(t, ok)
}

type stubPage struct {
	spans []TextSpan
	err   error
}

func (p stubPage) Index() int { return 3 }
func (p stubPage) Spans(context.Context) ([]TextSpan, error) {
	return p.spans, p.err
}
func (p stubPage) Search(context.Context, string) ([]Rect, error) { return nil, nil }
func (p stubPage) AddRedaction(Redaction) {}
func (p stubPage) ApplyRedactions(context.Context, RedactOptions) error { return nil }

func TestExtractSignatures(t *testing.T) {
	page := stubPage{spans: []TextSpan{
		{Text: "Header", BBox: NewRect(0, 0, 10, 10), FontSize: 10},
		{Text: "   ", BBox: NewRect(0, 0, 10, 10), FontSize: 10},
		{Text: "Body", BBox: NewRect(0, 20, 10, 30), FontSize: 10},
	}}
	sigs, err := ExtractSignatures(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "Header", sigs[0].Text)
	assert.Equal(t, "Body", sigs[1].Text)
}

func TestExtractSignatures_PageAccessFailure(t *testing.T) {
	_, err := ExtractSignatures(context.Background(), stubPage{err: errors.New("boom")})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrorCodePageAccess))
	assert.Contains(t, err.Error(), "page 3")
}

func TestKind_UnmarshalRejectsUnknown(t *testing.T) {
	var k Kind
	require.NoError(t, json.Unmarshal([]byte(`"text"`), &k))
	assert.Equal(t, KindText, k)
	require.NoError(t, json.Unmarshal([]byte(`"image"`), &k))
	assert.Equal(t, KindImage, k)
	assert.Error(t, json.Unmarshal([]byte(`"vector"`), &k))
}
