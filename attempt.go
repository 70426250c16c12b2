package wardsweep

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Cause classifies why a sweep slot holds the undefined sentinel.
type Cause int

const (
	// CauseUndefined means the metric is mathematically undefined for the
	// labeling (ErrMetricUndefined).
	CauseUndefined Cause = iota
	// CauseUnexpected means the metric failed for any other reason,
	// including a recovered panic or a non-finite result.
	CauseUnexpected
	// CauseStructural means no labeling could be produced for the cluster
	// count, so every metric in the row is undefined.
	CauseStructural
)

func (c Cause) String() string {
	switch c {
	case CauseUndefined:
		return "undefined"
	case CauseUnexpected:
		return "unexpected"
	case CauseStructural:
		return "structural"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// Diagnostic records one sentinel substitution during a sweep.
type Diagnostic struct {
	K      int
	Metric string // empty for structural failures
	Cause  Cause
	Err    error
}

func (d Diagnostic) String() string {
	if d.Metric == "" {
		return fmt.Sprintf("k=%d: %s: %v", d.K, d.Cause, d.Err)
	}
	return fmt.Sprintf("k=%d %s: %s: %v", d.K, d.Metric, d.Cause, d.Err)
}

// Undefined returns the sentinel stored for metrics that could not be
// computed. It is NaN, so plots show a gap instead of a misleading value.
func Undefined() float64 { return math.NaN() }

// IsUndefined reports whether v is the undefined sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

// attemptMetric runs fn and never lets its failure escape: an error, a
// non-finite value or a panic yields the undefined sentinel plus a
// diagnostic, which is also logged as a single line.
func attemptMetric(log *zap.Logger, k int, name string, fn func() (float64, error)) (v float64, diag *Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			v = Undefined()
			diag = &Diagnostic{
				K: k, Metric: name, Cause: CauseUnexpected,
				Err: fmt.Errorf("%w: %v", ErrUnexpectedComputation, r),
			}
			logDiagnostic(log, *diag)
		}
	}()

	v, err := fn()
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("%w: %s = %v", ErrNonFiniteResult, name, v)
	}
	if err == nil {
		return v, nil
	}

	cause := CauseUnexpected
	if errors.Is(err, ErrMetricUndefined) {
		cause = CauseUndefined
	}
	d := Diagnostic{K: k, Metric: name, Cause: cause, Err: err}
	logDiagnostic(log, d)
	return Undefined(), &d
}

func logDiagnostic(log *zap.Logger, d Diagnostic) {
	fields := []zap.Field{
		zap.Int("k", d.K),
		zap.Stringer("cause", d.Cause),
		zap.Error(d.Err),
	}
	if d.Metric == "" {
		log.Warn("clustering failed, row omitted", fields...)
		return
	}
	log.Warn("metric omitted", append(fields, zap.String("metric", d.Metric))...)
}
