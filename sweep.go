package wardsweep

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls a metrics sweep.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Neighbors is the number of nearest neighbors each sample is connected
	// to in the connectivity graph. The data must have more samples than
	// this. Must be >= 1. Default: 10.
	Neighbors int

	// NeighborAlgorithm selects the neighbor search used to build the graph.
	// Default: "auto" (brute force when the data fits in one leaf, else a
	// KD-tree up to 60 dimensions and a ball tree beyond).
	NeighborAlgorithm NeighborAlgorithm

	// LeafSize bounds the number of points in a KD-tree or ball tree leaf.
	// Default: 40.
	LeafSize int

	// Disconnect decides how a disconnected neighbor graph is handled.
	// Default: DisconnectBridge.
	Disconnect DisconnectPolicy

	// Workers is the number of cluster counts evaluated concurrently, and the
	// parallelism of the shared distance and neighbor computations. Values
	// <= 1 run everything on the calling goroutine. Default: 1.
	Workers int

	// Logger receives one warning per omitted metric plus start/finish
	// lines. nil discards everything.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Neighbors:         DefaultNeighbors,
		NeighborAlgorithm: NeighborAuto,
		LeafSize:          defaultLeafSize,
		Disconnect:        DisconnectBridge,
		Workers:           1,
	}
}

// DefaultClusterCounts returns the default swept range, 2 through 9.
func DefaultClusterCounts() []int {
	counts := make([]int, 0, 8)
	for k := 2; k <= 9; k++ {
		counts = append(counts, k)
	}
	return counts
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Neighbors == 0 {
		cfg.Neighbors = DefaultNeighbors
	}
	if cfg.NeighborAlgorithm == "" {
		cfg.NeighborAlgorithm = NeighborAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = defaultLeafSize
	}
	if cfg.Disconnect == "" {
		cfg.Disconnect = DisconnectBridge
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Neighbors < 1 {
		return fmt.Errorf("wardsweep: Neighbors must be >= 1, got %d", cfg.Neighbors)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("wardsweep: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	switch cfg.NeighborAlgorithm {
	case NeighborAuto, NeighborBrute, NeighborKDTree, NeighborBallTree:
	default:
		return fmt.Errorf("wardsweep: invalid NeighborAlgorithm %q", cfg.NeighborAlgorithm)
	}
	switch cfg.Disconnect {
	case DisconnectBridge, DisconnectFail:
	default:
		return fmt.Errorf("wardsweep: invalid DisconnectPolicy %q", cfg.Disconnect)
	}
	return nil
}

// SweepResult holds one entry per requested cluster count. Every slice is
// aligned with Counts, in the order the counts were given. Metric entries
// that could not be computed hold the undefined sentinel (see IsUndefined).
type SweepResult struct {
	Counts           []int
	WCSS             []float64
	Silhouette       []float64
	CalinskiHarabasz []float64
	DaviesBouldin    []float64

	// Clusters is the number of distinct labels produced for each count,
	// or 0 when clustering failed for it.
	Clusters []int

	// Diagnostics lists every sentinel substitution, ordered by position in
	// Counts and then by metric.
	Diagnostics []Diagnostic

	// Components is the number of connected components of the neighbor
	// graph, before any bridging.
	Components int
}

func newSweepResult(counts []int) *SweepResult {
	n := len(counts)
	return &SweepResult{
		Counts:           slices.Clone(counts),
		WCSS:             make([]float64, n),
		Silhouette:       make([]float64, n),
		CalinskiHarabasz: make([]float64, n),
		DaviesBouldin:    make([]float64, n),
		Clusters:         make([]int, n),
	}
}

// Series returns the sequence for a metric name, or nil if unknown.
func (r *SweepResult) Series(metric string) []float64 {
	switch metric {
	case MetricWCSS:
		return r.WCSS
	case MetricSilhouette:
		return r.Silhouette
	case MetricCalinskiHarabasz:
		return r.CalinskiHarabasz
	case MetricDaviesBouldin:
		return r.DaviesBouldin
	default:
		return nil
	}
}

// Best returns the cluster count with the best defined value of a validity
// metric: the maximum for silhouette and Calinski-Harabasz, the minimum for
// Davies-Bouldin. Ties keep the earliest position. WCSS has no best value
// and reports ok == false, as does a metric that is undefined everywhere.
func (r *SweepResult) Best(metric string) (k int, ok bool) {
	series := r.Series(metric)
	if series == nil || metric == MetricWCSS {
		return 0, false
	}
	lowerIsBetter := metric == MetricDaviesBouldin
	bestIdx := -1
	for i, v := range series {
		if IsUndefined(v) {
			continue
		}
		if bestIdx < 0 ||
			(!lowerIsBetter && v > series[bestIdx]) ||
			(lowerIsBetter && v < series[bestIdx]) {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return r.Counts[bestIdx], true
}

// sweepContext is the read-only state shared by every cluster count.
type sweepContext struct {
	std  *Standardized
	tree *Tree
	dist []float64 // pairwise distances between standardized samples
	log  *zap.Logger
}

// Sweep clusters data at every count in counts and scores each clustering.
//
// The connectivity graph is built once from the raw data and the data is
// standardized once; a single constrained Ward tree is then cut at each
// count. Failures of a single metric at a single count are recorded as the
// undefined sentinel plus a Diagnostic and never stop the sweep. Only
// failures of the shared state are returned as errors, most notably
// ErrInsufficientSamples when data does not have more samples than
// cfg.Neighbors. An empty counts uses DefaultClusterCounts.
func Sweep(data [][]float64, counts []int, cfg Config) (*SweepResult, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		counts = DefaultClusterCounts()
	}
	if len(data) <= cfg.Neighbors {
		return nil, fmt.Errorf("%w: %d neighbors requested for %d samples", ErrInsufficientSamples, cfg.Neighbors, len(data))
	}

	flat, n, dims, err := flatten(data)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger.With(zap.String("run", uuid.NewString()))
	log.Info("sweep started",
		zap.Int("samples", n), zap.Int("features", dims),
		zap.Ints("counts", counts), zap.Int("neighbors", cfg.Neighbors))

	conn, err := buildConnectivityFlat(flat, n, dims, cfg.Neighbors, ConnectivityOptions{
		Algorithm: cfg.NeighborAlgorithm,
		LeafSize:  cfg.LeafSize,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return nil, err
	}

	std, err := standardizeFlat(slices.Clone(flat), n, dims)
	if err != nil {
		return nil, err
	}
	if len(std.Constant) > 0 {
		log.Debug("constant columns standardized to zero", zap.Ints("columns", std.Constant))
	}

	tree, err := WardTree(std, conn, cfg.Disconnect)
	if err != nil {
		return nil, err
	}

	res := newSweepResult(counts)
	_, res.Components = conn.Components()
	if res.Components > 1 {
		log.Warn("connectivity graph is disconnected",
			zap.Int("components", res.Components),
			zap.String("policy", string(cfg.Disconnect)),
			zap.Int("bridges", tree.Bridges))
	}

	sc := &sweepContext{
		std:  std,
		tree: tree,
		dist: PairwiseDistancesParallel(std.Data, n, dims, cfg.Workers),
		log:  log,
	}

	diags := make([][]Diagnostic, len(counts))
	if cfg.Workers <= 1 {
		for i, k := range counts {
			diags[i] = sc.evaluate(res, i, k)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for i, k := range counts {
			g.Go(func() error {
				diags[i] = sc.evaluate(res, i, k)
				return nil
			})
		}
		_ = g.Wait()
	}
	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, d...)
	}

	log.Info("sweep finished", zap.Int("omitted", len(res.Diagnostics)))
	return res, nil
}

// evaluate fills position i of res for cluster count k. Each call writes
// only its own position, so calls for different positions may run
// concurrently.
func (sc *sweepContext) evaluate(res *SweepResult, i, k int) []Diagnostic {
	labeling, err := sc.tree.Cut(k)
	if err != nil {
		d := Diagnostic{K: k, Cause: CauseStructural, Err: err}
		logDiagnostic(sc.log, d)
		for _, series := range [][]float64{res.WCSS, res.Silhouette, res.CalinskiHarabasz, res.DaviesBouldin} {
			series[i] = Undefined()
		}
		return []Diagnostic{d}
	}
	res.Clusters[i] = labeling.Clusters

	points, dims, labels := sc.std.Data, sc.std.Dims, labeling.Labels
	metrics := []struct {
		name string
		dst  []float64
		fn   func() (float64, error)
	}{
		{MetricWCSS, res.WCSS, func() (float64, error) { return WCSS(points, dims, labels) }},
		{MetricSilhouette, res.Silhouette, func() (float64, error) {
			return SilhouetteFromDistances(sc.dist, sc.std.N, labels)
		}},
		{MetricCalinskiHarabasz, res.CalinskiHarabasz, func() (float64, error) { return CalinskiHarabasz(points, dims, labels) }},
		{MetricDaviesBouldin, res.DaviesBouldin, func() (float64, error) { return DaviesBouldin(points, dims, labels) }},
	}

	var diags []Diagnostic
	for _, m := range metrics {
		v, d := attemptMetric(sc.log, k, m.name, m.fn)
		m.dst[i] = v
		if d != nil {
			diags = append(diags, *d)
		}
	}
	return diags
}

// ComputeMetrics sweeps data with the default configuration and returns the
// four aligned sequences: WCSS, silhouette, Calinski-Harabasz and
// Davies-Bouldin. An empty counts sweeps 2 through 9.
func ComputeMetrics(data [][]float64, counts []int) (wcss, silhouette, calinskiHarabasz, daviesBouldin []float64, err error) {
	res, err := Sweep(data, counts, DefaultConfig())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return res.WCSS, res.Silhouette, res.CalinskiHarabasz, res.DaviesBouldin, nil
}
