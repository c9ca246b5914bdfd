package validation

// Config holds the solve thresholds.
type Config struct {
	// DimensionTolerance is the allowed relative size difference of the
	// filled area, per axis.
	DimensionTolerance float64 `yaml:"dimension_tolerance" json:"dimension_tolerance"`
	// SimilarityThreshold is the minimum Jaccard index for a solve.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
}

// DefaultConfig returns the thresholds used by the game.
func DefaultConfig() Config {
	return Config{
		DimensionTolerance:  0.15,
		SimilarityThreshold: 0.90,
	}
}

// Result is the outcome of one validation.
type Result struct {
	DimensionsOK bool    `json:"dimensions_ok"`
	Similarity   float64 `json:"similarity"`
	Solved       bool    `json:"solved"`
}

// Validator runs both checks against a target mask.
type Validator struct {
	config Config
}

// NewValidator creates a validator with config.
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// Config returns the validator thresholds.
func (v *Validator) Config() Config { return v.config }

// Validate compares current against target. It panics when the masks differ
// in size.
func (v *Validator) Validate(target, current *Mask) Result {
	tb, cb := target.FilledBounds(), current.FilledBounds()
	res := Result{
		DimensionsOK: CheckDimensions(
			float64(tb.Dx()), float64(tb.Dy()),
			float64(cb.Dx()), float64(cb.Dy()),
			v.config.DimensionTolerance,
		),
		Similarity: Similarity(target, current),
	}
	res.Solved = res.DimensionsOK && res.Similarity >= v.config.SimilarityThreshold
	return res
}
