package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"ratio above one", func(o *Options) { o.ThresholdRatio = 1.01 }, "threshold_ratio"},
		{"negative ratio", func(o *Options) { o.ThresholdRatio = -0.1 }, "threshold_ratio"},
		{"negative budget", func(o *Options) { o.SampleBudget = -1 }, "sample_budget"},
		{"negative page", func(o *Options) { o.Pages = []int{1, -1} }, "pages[1]"},
		{"too many workers", func(o *Options) { o.Workers = 65 }, "workers"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := DefaultOptions()
			tc.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrorCodeInvalidParameter))
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestOptions_BoundaryValuesAreValid(t *testing.T) {
	for _, o := range []Options{
		{ThresholdRatio: 0, SampleBudget: 0},
		{ThresholdRatio: 1, SampleBudget: 1000, Workers: 64},
	} {
		assert.NoError(t, o.Validate())
	}
}

func TestPolicy_Validate(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	require.NotNil(t, p.Fill)
	assert.Equal(t, White, *p.Fill)

	p.Fill = nil
	assert.NoError(t, p.Validate(), "transparent fill is allowed")

	p.Images = ""
	assert.True(t, IsCode(p.Validate(), ErrorCodeInvalidParameter))
}

func TestParseImagePolicy(t *testing.T) {
	for in, want := range map[string]ImagePolicy{"": ImagesNone, "NONE": ImagesNone, " remove ": ImagesRemove, "pixels": ImagesPixels} {
		got, err := ParseImagePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseImagePolicy("blur")
	assert.True(t, IsCode(err, ErrorCodeInvalidParameter))
}

func TestParseFill(t *testing.T) {
	tests := []struct {
		in      string
		want    *Color
		wantErr bool
	}{
		{"", ptr(White), false},
		{"White", ptr(White), false},
		{"black", ptr(0), false},
		{"#BFBFBF", ptr(0xBFBFBF), false},
		{"ff0000", ptr(0xFF0000), false},
		{"none", nil, false},
		{"transparent", nil, false},
		{"#FFF", nil, true},
		{"mauve", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFill(tc.in)
			if tc.wantErr {
				assert.True(t, IsCode(err, ErrorCodeInvalidParameter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func ptr(c Color) *Color { return &c }
