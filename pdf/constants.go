package pdf

const (
	// DefaultThresholdRatio is the minimum fraction of sampled pages (80%) for watermark detection
	DefaultThresholdRatio = 0.8

	// DefaultSampleBudget is the maximum number of pages inspected during detection
	DefaultSampleBudget = 10

	// DefaultOverlapThreshold is the share of an occurrence that must sit on the reference box
	DefaultOverlapThreshold = 0.5

	// DefaultTolerance is the jitter margin added around the reference box
	DefaultTolerance = 2.0

	// MaxSpecifiedPages caps how many pages a page specifier may expand to
	MaxSpecifiedPages = 10000
)
