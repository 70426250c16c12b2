// Package wardsweep evaluates how many clusters best describe a dataset under
// connectivity-constrained Ward agglomerative clustering.
//
// A sweep standardizes the data once, builds a k-nearest-neighbor
// connectivity graph once, grows a single constrained Ward merge tree, and
// then cuts the tree at every requested cluster count. For each cut it
// computes four metrics: the within-cluster sum of squares (WCSS), the mean
// silhouette coefficient, the Calinski-Harabasz index and the Davies-Bouldin
// index.
//
// Basic usage:
//
//	cfg := wardsweep.DefaultConfig()
//	res, err := wardsweep.Sweep(data, []int{2, 3, 4, 5}, cfg)
//	// res.WCSS[i], res.Silhouette[i], ... belong to res.Counts[i]
//	// wardsweep.IsUndefined(res.Silhouette[i]) reports a metric that could
//	// not be computed for that count; res.Diagnostics says why.
//
// A metric that is undefined for a particular clustering (for example a
// silhouette over a single cluster) never aborts the sweep: its slot holds
// NaN and a diagnostic is logged. The only fatal preconditions are those that
// prevent the shared state from existing at all, such as requesting more
// neighbors than there are samples ([ErrInsufficientSamples]).
//
// # Disconnected constraints
//
// A k-nearest-neighbor graph can split the data into several connected
// components. With [DisconnectBridge] (the default) the components are joined
// by the closest sample pair between every two components before clustering,
// so every cluster count in [1, n] is reachable. With [DisconnectFail] the graph
// is left alone and cutting below the number of components returns
// [ErrDisconnectedConstraint], which the sweep records as an undefined row.
package wardsweep
