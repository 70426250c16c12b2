package wardsweep

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Neighbors != 10 {
		t.Errorf("Neighbors: got %d, want 10", cfg.Neighbors)
	}
	if cfg.NeighborAlgorithm != NeighborAuto {
		t.Errorf("NeighborAlgorithm: got %q, want auto", cfg.NeighborAlgorithm)
	}
	if cfg.Disconnect != DisconnectBridge {
		t.Errorf("Disconnect: got %q, want bridge", cfg.Disconnect)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers: got %d, want 1", cfg.Workers)
	}
	if got := DefaultClusterCounts(); !slices.Equal(got, []int{2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Errorf("DefaultClusterCounts: got %v", got)
	}
}

func TestSweep_InvalidConfig(t *testing.T) {
	data := threeBlobs(1, 10)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative neighbors", Config{Neighbors: -1}},
		{"negative leaf size", Config{LeafSize: -3}},
		{"unknown algorithm", Config{NeighborAlgorithm: "covertree"}},
		{"unknown policy", Config{Disconnect: "ignore"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Sweep(data, nil, tt.cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSweep_ThreeBlobs(t *testing.T) {
	counts := []int{2, 3, 4, 5}
	res, err := Sweep(threeBlobs(42, 30), counts, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, metric := range []string{MetricWCSS, MetricSilhouette, MetricCalinskiHarabasz, MetricDaviesBouldin} {
		series := res.Series(metric)
		if len(series) != len(counts) {
			t.Fatalf("%s: got %d values, want %d", metric, len(series), len(counts))
		}
		for i, v := range series {
			if IsUndefined(v) {
				t.Errorf("%s at k=%d is undefined", metric, counts[i])
			}
		}
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if !slices.Equal(res.Clusters, counts) {
		t.Errorf("Clusters: got %v, want %v", res.Clusters, counts)
	}

	for i := 1; i < len(res.WCSS); i++ {
		if res.WCSS[i] >= res.WCSS[i-1] {
			t.Errorf("WCSS not decreasing: k=%d %f, k=%d %f", counts[i-1], res.WCSS[i-1], counts[i], res.WCSS[i])
		}
	}
	if k, ok := res.Best(MetricSilhouette); !ok || k != 3 {
		t.Errorf("best silhouette: got %d (%v), want 3", k, ok)
	}
	if k, ok := res.Best(MetricCalinskiHarabasz); !ok || k != 3 {
		t.Errorf("best calinski-harabasz: got %d (%v), want 3", k, ok)
	}
	if _, ok := res.Best(MetricWCSS); ok {
		t.Error("WCSS should have no best value")
	}
	if res.Series("nope") != nil {
		t.Error("unknown metric should return nil")
	}
}

func TestSweep_InsufficientSamples(t *testing.T) {
	data := randomData(5, 5, 2)
	_, err := Sweep(data, []int{2, 3}, DefaultConfig())
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("got %v, want ErrInsufficientSamples", err)
	}

	// Exactly Neighbors samples is still too few.
	cfg := DefaultConfig()
	cfg.Neighbors = 5
	if _, err := Sweep(data, nil, cfg); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("n == neighbors: got %v, want ErrInsufficientSamples", err)
	}
}

func TestSweep_BadInput(t *testing.T) {
	ragged := randomData(1, 20, 2)
	ragged[7] = []float64{1}
	if _, err := Sweep(ragged, nil, DefaultConfig()); !errors.Is(err, ErrRaggedInput) {
		t.Errorf("ragged: got %v, want ErrRaggedInput", err)
	}
}

func TestSweep_OrderFollowsCounts(t *testing.T) {
	data := threeBlobs(7, 15)
	ordered, err := Sweep(data, []int{2, 5, 8}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	shuffled, err := Sweep(data, []int{5, 2, 8}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(shuffled.Counts, []int{5, 2, 8}) {
		t.Fatalf("Counts: got %v", shuffled.Counts)
	}
	perm := []int{1, 0, 2}
	for _, metric := range []string{MetricWCSS, MetricSilhouette, MetricCalinskiHarabasz, MetricDaviesBouldin} {
		a, b := ordered.Series(metric), shuffled.Series(metric)
		for i, j := range perm {
			if a[j] != b[i] {
				t.Errorf("%s: k=%d got %v, want %v", metric, shuffled.Counts[i], b[i], a[j])
			}
		}
	}
}

func TestSweep_UndefinedMetricsAreIsolated(t *testing.T) {
	data := tightGroups(4, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{0, 10})
	cfg := DefaultConfig()
	cfg.Neighbors = 3

	counts := []int{2, 12, 3, 1}
	res, err := Sweep(data, counts, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every sample in its own cluster.
	if res.WCSS[1] != 0 {
		t.Errorf("WCSS at k=12: got %f, want 0", res.WCSS[1])
	}
	// One cluster.
	if IsUndefined(res.WCSS[3]) || res.WCSS[3] <= 0 {
		t.Errorf("WCSS at k=1: got %f, want > 0", res.WCSS[3])
	}
	for _, i := range []int{1, 3} {
		for _, series := range [][]float64{res.Silhouette, res.CalinskiHarabasz, res.DaviesBouldin} {
			if !IsUndefined(series[i]) {
				t.Errorf("k=%d: got %f, want undefined", counts[i], series[i])
			}
		}
	}
	for _, i := range []int{0, 2} {
		for _, metric := range []string{MetricWCSS, MetricSilhouette, MetricCalinskiHarabasz, MetricDaviesBouldin} {
			if IsUndefined(res.Series(metric)[i]) {
				t.Errorf("%s at k=%d should be defined", metric, counts[i])
			}
		}
	}

	if len(res.Diagnostics) != 6 {
		t.Fatalf("got %d diagnostics, want 6: %v", len(res.Diagnostics), res.Diagnostics)
	}
	for i, d := range res.Diagnostics {
		wantK := 12
		if i >= 3 {
			wantK = 1
		}
		if d.K != wantK || d.Cause != CauseUndefined || !errors.Is(d.Err, ErrMetricUndefined) {
			t.Errorf("diagnostic %d: got %v", i, d)
		}
	}
	if res.Components != 3 {
		t.Errorf("Components: got %d, want 3", res.Components)
	}
}

func TestSweep_InvalidCountsAreStructural(t *testing.T) {
	data := tightGroups(4, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{0, 10})
	cfg := DefaultConfig()
	cfg.Neighbors = 3

	res, err := Sweep(data, []int{0, 3, 13, -2}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, i := range []int{0, 2, 3} {
		if res.Clusters[i] != 0 {
			t.Errorf("Clusters at position %d: got %d, want 0", i, res.Clusters[i])
		}
		for _, series := range [][]float64{res.WCSS, res.Silhouette, res.CalinskiHarabasz, res.DaviesBouldin} {
			if !IsUndefined(series[i]) {
				t.Errorf("position %d: got %f, want undefined", i, series[i])
			}
		}
	}
	if IsUndefined(res.Silhouette[1]) {
		t.Error("k=3 should be unaffected by its neighbors")
	}
	if len(res.Diagnostics) != 3 {
		t.Fatalf("got %d diagnostics, want 3", len(res.Diagnostics))
	}
	for _, d := range res.Diagnostics {
		if d.Cause != CauseStructural || d.Metric != "" || !errors.Is(d.Err, ErrInvalidClusterCount) {
			t.Errorf("got %v, want structural ErrInvalidClusterCount", d)
		}
	}
}

func TestSweep_DisconnectFail(t *testing.T) {
	data := tightGroups(4, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{0, 10})
	cfg := DefaultConfig()
	cfg.Neighbors = 3
	cfg.Disconnect = DisconnectFail

	res, err := Sweep(data, []int{1, 2, 3, 4}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if !IsUndefined(res.WCSS[i]) {
			t.Errorf("k=%d: WCSS should be undefined below the component count", res.Counts[i])
		}
	}
	for i := 2; i < 4; i++ {
		if IsUndefined(res.WCSS[i]) || IsUndefined(res.Silhouette[i]) {
			t.Errorf("k=%d should be defined", res.Counts[i])
		}
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(res.Diagnostics))
	}
	for _, d := range res.Diagnostics {
		if !errors.Is(d.Err, ErrDisconnectedConstraint) || d.Cause != CauseStructural {
			t.Errorf("got %v, want structural ErrDisconnectedConstraint", d)
		}
	}
}

func TestSweep_ParallelMatchesSequential(t *testing.T) {
	data := randomData(7, 80, 3)
	counts := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 20, 80, 81}

	seq, err := Sweep(data, counts, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Workers = 4
	par, err := Sweep(data, counts, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for _, metric := range []string{MetricWCSS, MetricSilhouette, MetricCalinskiHarabasz, MetricDaviesBouldin} {
		if !sameSeries(seq.Series(metric), par.Series(metric)) {
			t.Errorf("%s differs:\nseq %v\npar %v", metric, seq.Series(metric), par.Series(metric))
		}
	}
	if !slices.Equal(seq.Clusters, par.Clusters) {
		t.Errorf("Clusters differ: %v vs %v", seq.Clusters, par.Clusters)
	}
	if len(seq.Diagnostics) != len(par.Diagnostics) {
		t.Fatalf("diagnostic count: %d vs %d", len(seq.Diagnostics), len(par.Diagnostics))
	}
	for i := range seq.Diagnostics {
		if seq.Diagnostics[i].K != par.Diagnostics[i].K || seq.Diagnostics[i].Metric != par.Diagnostics[i].Metric {
			t.Errorf("diagnostic %d: %v vs %v", i, seq.Diagnostics[i], par.Diagnostics[i])
		}
	}
}

func TestSweep_NeighborAlgorithmsAgree(t *testing.T) {
	data := randomData(11, 90, 2)
	counts := []int{2, 4, 6, 8}

	results := map[NeighborAlgorithm]*SweepResult{}
	for _, algo := range []NeighborAlgorithm{NeighborBrute, NeighborKDTree, NeighborBallTree} {
		cfg := DefaultConfig()
		cfg.NeighborAlgorithm = algo
		cfg.LeafSize = 8
		res, err := Sweep(data, counts, cfg)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		results[algo] = res
	}
	for _, metric := range []string{MetricWCSS, MetricSilhouette, MetricCalinskiHarabasz, MetricDaviesBouldin} {
		for _, algo := range []NeighborAlgorithm{NeighborKDTree, NeighborBallTree} {
			if !sameSeries(results[NeighborBrute].Series(metric), results[algo].Series(metric)) {
				t.Errorf("%s differs between brute and %s", metric, algo)
			}
		}
	}
}

func TestSweep_DoesNotMutateInput(t *testing.T) {
	data := threeBlobs(3, 12)
	orig := make([][]float64, len(data))
	for i := range data {
		orig[i] = slices.Clone(data[i])
	}
	if _, err := Sweep(data, nil, DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if !slices.Equal(data[i], orig[i]) {
			t.Fatalf("row %d mutated: %v -> %v", i, orig[i], data[i])
		}
	}
}

func TestSweep_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	data := tightGroups(4, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{0, 10})
	cfg := DefaultConfig()
	cfg.Neighbors = 3
	cfg.Logger = zap.New(core)

	if _, err := Sweep(data, []int{3, 12}, cfg); err != nil {
		t.Fatal(err)
	}

	started := logs.FilterMessage("sweep started").All()
	if len(started) != 1 {
		t.Fatalf("got %d start lines, want 1", len(started))
	}
	run, ok := started[0].ContextMap()["run"].(string)
	if !ok || run == "" {
		t.Fatalf("start line has no run id: %v", started[0].ContextMap())
	}

	if n := logs.FilterMessage("connectivity graph is disconnected").Len(); n != 1 {
		t.Errorf("got %d disconnected warnings, want 1", n)
	}

	omitted := logs.FilterMessage("metric omitted").All()
	if len(omitted) != 3 {
		t.Fatalf("got %d omitted lines, want 3", len(omitted))
	}
	seen := map[string]bool{}
	for _, e := range omitted {
		fields := e.ContextMap()
		if fields["run"] != run {
			t.Errorf("omitted line has run %v, want %v", fields["run"], run)
		}
		if fields["k"] != int64(12) {
			t.Errorf("omitted line has k %v, want 12", fields["k"])
		}
		seen[fields["metric"].(string)] = true
	}
	for _, m := range []string{MetricSilhouette, MetricCalinskiHarabasz, MetricDaviesBouldin} {
		if !seen[m] {
			t.Errorf("no omitted line for %s", m)
		}
	}

	finished := logs.FilterMessage("sweep finished").All()
	if len(finished) != 1 || finished[0].ContextMap()["omitted"] != int64(3) {
		t.Errorf("finish line: %v", finished)
	}
}

func TestComputeMetrics(t *testing.T) {
	wcss, sil, ch, db, err := ComputeMetrics(threeBlobs(42, 20), nil)
	if err != nil {
		t.Fatal(err)
	}
	for name, series := range map[string][]float64{"wcss": wcss, "silhouette": sil, "ch": ch, "db": db} {
		if len(series) != 8 {
			t.Errorf("%s: got %d values, want 8", name, len(series))
		}
	}

	if _, _, _, _, err := ComputeMetrics(randomData(1, 4, 2), []int{2}); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("got %v, want ErrInsufficientSamples", err)
	}
}
