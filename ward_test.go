package wardsweep

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// fourOnALine is 0, 1, 10, 11 with one neighbor each: two components
// {0,1} and {2,3}.
func fourOnALine(t *testing.T) (*Standardized, *Connectivity) {
	t.Helper()
	data := [][]float64{{0}, {1}, {10}, {11}}
	conn, err := BuildConnectivity(data, 1, ConnectivityOptions{})
	if err != nil {
		t.Fatal(err)
	}
	std, err := Standardize(data)
	if err != nil {
		t.Fatal(err)
	}
	return std, conn
}

func TestWardTree_BridgedLine(t *testing.T) {
	std, conn := fourOnALine(t)
	tree, err := WardTree(std, conn, DisconnectBridge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Bridges != 1 {
		t.Errorf("Bridges: got %d, want 1", tree.Bridges)
	}
	if len(tree.Linkage) != 3 {
		t.Fatalf("Linkage rows: got %d, want 3", len(tree.Linkage))
	}

	// The two pairs cost the same; the lower ids merge first.
	wantPairs := [][2]float64{{0, 1}, {2, 3}, {4, 5}}
	wantSizes := []float64{2, 2, 4}
	for i, r := range tree.Linkage {
		if r[0] != wantPairs[i][0] || r[1] != wantPairs[i][1] {
			t.Errorf("row %d: merged %v,%v, want %v", i, r[0], r[1], wantPairs[i])
		}
		if r[3] != wantSizes[i] {
			t.Errorf("row %d: size %v, want %v", i, r[3], wantSizes[i])
		}
	}

	// For two singletons the Ward height is their Euclidean distance.
	want := math.Abs(std.Row(1)[0] - std.Row(0)[0])
	if math.Abs(tree.Linkage[0][2]-want) > 1e-12 {
		t.Errorf("first height: got %v, want %v", tree.Linkage[0][2], want)
	}
	if tree.MinClusters() != 1 {
		t.Errorf("MinClusters: got %d, want 1", tree.MinClusters())
	}
}

func TestWardTree_DisconnectFail(t *testing.T) {
	std, conn := fourOnALine(t)
	tree, err := WardTree(std, conn, DisconnectFail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Bridges != 0 {
		t.Errorf("Bridges: got %d, want 0", tree.Bridges)
	}
	if len(tree.Linkage) != 2 || tree.MinClusters() != 2 {
		t.Fatalf("got %d rows, MinClusters %d; want 2 and 2", len(tree.Linkage), tree.MinClusters())
	}

	if _, err := tree.Cut(1); !errors.Is(err, ErrDisconnectedConstraint) {
		t.Errorf("Cut(1): got %v, want ErrDisconnectedConstraint", err)
	}
	lab, err := tree.Cut(2)
	if err != nil {
		t.Fatalf("Cut(2): %v", err)
	}
	if want := []int{0, 0, 1, 1}; !sameInts(lab.Labels, want) {
		t.Errorf("Cut(2): got %v, want %v", lab.Labels, want)
	}
}

func TestWardTree_RespectsConnectivity(t *testing.T) {
	// Without bridging, no cluster may ever span two components.
	data := tightGroups(5, [2]float64{0, 0}, [2]float64{3, 0}, [2]float64{0, 40})
	conn, err := BuildConnectivity(data, 3, ConnectivityOptions{})
	if err != nil {
		t.Fatal(err)
	}
	comp, count := conn.Components()
	std, err := Standardize(data)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := WardTree(std, conn, DisconnectFail)
	if err != nil {
		t.Fatal(err)
	}
	if tree.MinClusters() != count {
		t.Fatalf("MinClusters: got %d, want %d components", tree.MinClusters(), count)
	}
	for k := count; k <= len(data); k++ {
		lab, err := tree.Cut(k)
		if err != nil {
			t.Fatalf("Cut(%d): %v", k, err)
		}
		compOf := map[int]int{}
		for i, l := range lab.Labels {
			if c, ok := compOf[l]; ok && c != comp[i] {
				t.Fatalf("k=%d: cluster %d spans components %d and %d", k, l, c, comp[i])
			}
			compOf[l] = comp[i]
		}
	}
}

func TestWardTree_Deterministic(t *testing.T) {
	data := threeBlobs(42, 30)
	conn, err := BuildConnectivity(data, 10, ConnectivityOptions{})
	if err != nil {
		t.Fatal(err)
	}
	std, err := Standardize(data)
	if err != nil {
		t.Fatal(err)
	}

	first, err := WardTree(std, conn, DisconnectBridge)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 3; run++ {
		again, err := WardTree(std, conn, DisconnectBridge)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first.Linkage, again.Linkage) {
			t.Fatalf("run %d: linkage differs", run)
		}
	}

	a, err := ClusterConstrained(std, conn, 4, DisconnectBridge)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ClusterConstrained(std, conn, 4, DisconnectBridge)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("ClusterConstrained labels differ between runs")
	}
}

func TestWardTree_LinkageInvariants(t *testing.T) {
	data := randomData(9, 80, 3)
	conn, err := BuildConnectivity(data, 5, ConnectivityOptions{})
	if err != nil {
		t.Fatal(err)
	}
	std, err := Standardize(data)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := WardTree(std, conn, DisconnectBridge)
	if err != nil {
		t.Fatal(err)
	}

	n := len(data)
	if len(tree.Linkage) != n-1 {
		t.Fatalf("rows: got %d, want %d", len(tree.Linkage), n-1)
	}
	used := make(map[int]bool)
	for i, r := range tree.Linkage {
		a, b := int(r[0]), int(r[1])
		if a >= b {
			t.Errorf("row %d: left %d not below right %d", i, a, b)
		}
		if b >= n+i {
			t.Errorf("row %d: refers to cluster %d before it exists", i, b)
		}
		if used[a] || used[b] {
			t.Errorf("row %d: cluster merged twice", i)
		}
		used[a], used[b] = true, true
		if r[2] < 0 || math.IsNaN(r[2]) {
			t.Errorf("row %d: height %v", i, r[2])
		}
	}
	if last := tree.Linkage[n-2][3]; int(last) != n {
		t.Errorf("root size: got %v, want %d", last, n)
	}
}

func TestWardTree_Errors(t *testing.T) {
	std, conn := fourOnALine(t)
	if _, err := WardTree(std, conn, "sometimes"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if _, err := WardTree(nil, conn, DisconnectBridge); err == nil {
		t.Error("expected error for nil data")
	}

	other, err := BuildConnectivity(line(6), 2, ConnectivityOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WardTree(std, other, DisconnectBridge); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("got %v, want ErrShapeMismatch", err)
	}
}

func TestWardTree_EmptyPolicyMeansBridge(t *testing.T) {
	std, conn := fourOnALine(t)
	tree, err := WardTree(std, conn, "")
	if err != nil {
		t.Fatal(err)
	}
	if tree.Bridges != 1 || tree.MinClusters() != 1 {
		t.Errorf("got Bridges=%d MinClusters=%d, want 1 and 1", tree.Bridges, tree.MinClusters())
	}
}
