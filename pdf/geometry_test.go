package pdf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersectPercent(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		ref  Rect
		want float64
	}{
		{"identical", NewRect(10, 10, 50, 20), NewRect(10, 10, 50, 20), 1},
		{"jitter within tolerance", NewRect(9, 8.5, 51.5, 21), NewRect(10, 10, 50, 20), 1},
		{"disjoint", NewRect(0, 0, 10, 10), NewRect(100, 100, 110, 110), 0},
		{"touching edges", NewRect(0, 0, 10, 10), NewRect(10, 0, 20, 10), 0},
		{"half covered", NewRect(0, 0, 10, 10), NewRect(5, 0, 20, 10), 0.5},
		{"quarter covered", NewRect(0, 0, 10, 10), NewRect(5, 5, 50, 50), 0.25},
		{"zero area", NewRect(5, 5, 5, 10), NewRect(0, 0, 10, 10), 0},
		{"inverted", NewRect(10, 10, 0, 0), NewRect(0, 0, 10, 10), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, IntersectPercent(tc.r, tc.ref, DefaultTolerance), 1e-9)
		})
	}
}

func TestIntersectPercent_ToleranceIsConfigurable(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	ref := NewRect(4, 0, 20, 10)

	assert.InDelta(t, 0.6, IntersectPercent(r, ref, 0), 1e-9)
	assert.Equal(t, 1.0, IntersectPercent(r, ref, 4))
}

func TestRect_Ops(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 20, 20)

	assert.Equal(t, NewRect(5, 5, 10, 10), a.Intersect(b))
	assert.Equal(t, NewRect(0, 0, 20, 20), a.Union(b))
	assert.Equal(t, a, Rect{}.Union(a))
	assert.True(t, a.Expand(2).Contains(NewRect(-2, -2, 12, 12)))
	assert.False(t, a.Contains(b))
	assert.True(t, a.Intersect(NewRect(30, 30, 40, 40)).IsEmpty())
	assert.Equal(t, 100.0, a.Area())
	assert.Equal(t, 0.0, NewRect(3, 3, 1, 1).Area())
}

func TestRect_JSON(t *testing.T) {
	data, err := json.Marshal(NewRect(1, 2.5, 3, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2.5,3,4]`, string(data))

	var r Rect
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, NewRect(1, 2.5, 3, 4), r)

	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"x0":1}`), &r))
}
