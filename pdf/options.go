package pdf

import (
	stderrs "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Options configures one Analyze run
type Options struct {
	// ThresholdRatio is the fraction of sampled pages a signature must occur on
	ThresholdRatio float64 `json:"threshold_ratio" validate:"gte=0,lte=1"`
	// SampleBudget is the maximum number of pages inspected
	SampleBudget int `json:"sample_budget" validate:"gte=0"`
	// Pages, when set, replaces the sampled pages (0-based)
	Pages []int `json:"pages" validate:"omitempty,dive,gte=0"`
	// Workers is the number of pages extracted in parallel, 0 or 1 means sequential
	Workers int `json:"workers" validate:"gte=0,lte=64"`
}

// DefaultOptions returns the detection defaults
func DefaultOptions() Options {
	return Options{
		ThresholdRatio: DefaultThresholdRatio,
		SampleBudget:   DefaultSampleBudget,
		Workers:        1,
	}
}

// Validate rejects out-of-range parameters before any page work starts
func (o Options) Validate() error {
	return validateStruct("Options.Validate", o)
}

// Policy configures how candidates are matched and masked during removal
type Policy struct {
	// OverlapThreshold is the covered share an occurrence must exceed to be removed
	OverlapThreshold float64 `json:"overlap_threshold" validate:"gte=0,lte=1"`
	// Tolerance grows the reference box on every side before the containment test
	Tolerance float64 `json:"tolerance" validate:"gte=0"`
	// Fill paints the redacted area, nil leaves it transparent
	Fill *Color `json:"fill"`
	// Images controls what happens to images under a redaction
	Images ImagePolicy `json:"images" validate:"oneof=none remove pixels"`
}

// DefaultPolicy masks with opaque white and leaves images alone
func DefaultPolicy() Policy {
	white := White
	return Policy{
		OverlapThreshold: DefaultOverlapThreshold,
		Tolerance:        DefaultTolerance,
		Fill:             &white,
		Images:           ImagesNone,
	}
}

// Validate rejects out-of-range policy values
func (p Policy) Validate() error {
	return validateStruct("Policy.Validate", p)
}

var (
	vOnce sync.Once
	vInst *validator.Validate
)

// Validator returns the shared validator, which reports json tag names in errors
func Validator() *validator.Validate {
	vOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		vInst = v
	})
	return vInst
}

func validateStruct(op string, s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stderrs.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return Errorf(ErrorCodeInvalidParameter, op, "%s fails %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
	return Wrap(err, ErrorCodeInvalidParameter, op, "invalid parameters")
}
