package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// MissingInputError reports that a required sub-structure of the record
// was absent. Scoring aborts before any computation; the caller can
// recover by supplying complete data.
type MissingInputError struct {
	Section string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("engine: missing required record section %q", e.Section)
}

// ComputationError reports an impossible intermediate state, such as a
// non-finite value escaping a sub-score formula.
type ComputationError struct {
	Stage string
	Value float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("engine: non-finite value %v computed in %s", e.Value, e.Stage)
}

// InvalidRangeError describes a numeric input outside its documented
// domain. The range policy is clamp-and-warn, so this error is reported
// through the log rather than returned; the type names the condition for
// the warning and for callers that pre-validate with CheckRange.
type InvalidRangeError struct {
	Field    string
	Value    float64
	Min, Max float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("engine: %s = %v outside [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// CheckRange reports whether v lies inside [lo, hi], returning an
// InvalidRangeError when it does not. NaN is never in range.
func CheckRange(field string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return &InvalidRangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// clampRange bounds v to [lo, hi]. Out-of-domain inputs are clamped, not
// rejected; the clamp is logged once per offending field so bad upstream
// data stays visible.
func clampRange(field string, v, lo, hi float64) float64 {
	if err := CheckRange(field, v, lo, hi); err != nil {
		clamped := math.Min(hi, math.Max(lo, v))
		if math.IsNaN(v) {
			clamped = lo
		}
		zap.L().Warn("engine: clamping input",
			zap.Error(err),
			zap.Float64("clamped", clamped),
		)
		return clamped
	}
	return v
}

// checkFinite guards score arithmetic against NaN/Inf escaping a formula.
func checkFinite(stage string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ComputationError{Stage: stage, Value: v}
	}
	return v, nil
}
