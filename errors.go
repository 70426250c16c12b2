package wardsweep

import "errors"

var (
	// ErrEmptyInput is returned when the feature matrix has no rows or no columns.
	ErrEmptyInput = errors.New("wardsweep: empty input")

	// ErrRaggedInput is returned when rows of the feature matrix differ in length.
	ErrRaggedInput = errors.New("wardsweep: rows have different lengths")

	// ErrNonFiniteInput is returned when the feature matrix contains NaN or Inf.
	ErrNonFiniteInput = errors.New("wardsweep: input contains NaN or Inf")

	// ErrInsufficientSamples is returned when there are too few samples for the
	// requested operation, most notably when the connectivity graph asks for
	// at least as many neighbors as there are samples. It is fatal to a sweep.
	ErrInsufficientSamples = errors.New("wardsweep: insufficient samples")

	// ErrDisconnectedConstraint is returned when the connectivity graph has
	// more connected components than the requested number of clusters and the
	// DisconnectFail policy is in effect.
	ErrDisconnectedConstraint = errors.New("wardsweep: connectivity constraint is disconnected")

	// ErrInvalidClusterCount is returned for cluster counts outside [1, n].
	ErrInvalidClusterCount = errors.New("wardsweep: invalid cluster count")

	// ErrShapeMismatch is returned when points and labels disagree in length.
	ErrShapeMismatch = errors.New("wardsweep: points and labels have mismatched shapes")

	// ErrMetricUndefined is returned by a validity metric whose mathematical
	// preconditions do not hold for the given labeling.
	ErrMetricUndefined = errors.New("wardsweep: metric undefined for labeling")

	// ErrNonFiniteResult is returned when a metric evaluates to NaN or Inf.
	ErrNonFiniteResult = errors.New("wardsweep: metric result is not finite")

	// ErrUnexpectedComputation wraps panics recovered while computing a metric.
	ErrUnexpectedComputation = errors.New("wardsweep: unexpected computation failure")
)
