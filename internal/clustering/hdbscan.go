// Package clustering implements the density clusterer (component E):
// HDBSCAN-style grouping of embeddings by density, with a noise label (-1)
// for points that never join a sufficiently dense cluster.
//
// No Go HDBSCAN implementation exists anywhere in the dependency pack this
// module draws on, so the core algorithm — core distances, mutual
// reachability distance, minimum spanning tree, then a condensed
// single-linkage cut at min_cluster_size — is implemented directly from
// HDBSCAN's documented semantics using only sort/math, per spec's explicit
// allowance to substitute any density-based clusterer with equivalent
// noise-label semantics.
package clustering

import (
	"math"
	"sort"

	"github.com/lueurxax/briefing-pipeline/internal/core/domain"
)

// Cluster runs HDBSCAN-style density clustering over vectors with a
// Euclidean metric, returning one domain.Cluster per surviving label plus
// a single label -1 cluster for noise points, if any survive. minClusterSize
// must be >= 1.
func Cluster(vectors [][]float32, minClusterSize int) []domain.Cluster {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	if minClusterSize < 1 {
		minClusterSize = 1
	}

	core := coreDistances(vectors, minClusterSize)
	edges := mutualReachabilityMST(vectors, core)

	labels := extractFlatClusters(n, edges, minClusterSize)

	return bundleByLabel(labels)
}

// edge is one link of the mutual-reachability minimum spanning tree.
type edge struct {
	a, b   int
	weight float64
}

// coreDistances returns, for each point, its distance to its k-th nearest
// neighbor (k = minClusterSize), counting the point itself as its own
// first neighbor the way HDBSCAN does, so the result is the distance to
// the (k-1)-th nearest other point: HDBSCAN's notion of local density.
func coreDistances(vectors [][]float32, k int) []float64 {
	n := len(vectors)
	core := make([]float64, n)

	for i := range vectors {
		dists := make([]float64, 0, n-1)

		for j := range vectors {
			if i == j {
				continue
			}

			dists = append(dists, euclidean(vectors[i], vectors[j]))
		}

		sort.Float64s(dists)

		idx := k - 2
		if idx >= len(dists) {
			idx = len(dists) - 1
		}

		if idx < 0 {
			core[i] = 0
		} else {
			core[i] = dists[idx]
		}
	}

	return core
}

// mutualReachabilityMST builds the minimum spanning tree of the complete
// graph whose edge weight between a and b is
// max(core[a], core[b], euclidean(a,b)), using Prim's algorithm.
func mutualReachabilityMST(vectors [][]float32, core []float64) []edge {
	n := len(vectors)
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	minWeight := make([]float64, n)
	minFrom := make([]int, n)

	for i := range minWeight {
		minWeight[i] = math.Inf(1)
		minFrom[i] = -1
	}

	minWeight[0] = 0
	edges := make([]edge, 0, n-1)

	for range n {
		u := -1

		for v := 0; v < n; v++ {
			if !inTree[v] && (u == -1 || minWeight[v] < minWeight[u]) {
				u = v
			}
		}

		inTree[u] = true

		if minFrom[u] != -1 {
			edges = append(edges, edge{a: minFrom[u], b: u, weight: minWeight[u]})
		}

		for v := 0; v < n; v++ {
			if inTree[v] {
				continue
			}

			w := mutualReachability(core[u], core[v], euclidean(vectors[u], vectors[v]))
			if w < minWeight[v] {
				minWeight[v] = w
				minFrom[v] = u
			}
		}
	}

	return edges
}

func mutualReachability(coreA, coreB, dist float64) float64 {
	w := dist
	if coreA > w {
		w = coreA
	}

	if coreB > w {
		w = coreB
	}

	return w
}

func euclidean(a, b []float32) float64 {
	var sum float64

	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}

// extractFlatClusters processes MST edges in ascending weight order
// (single-linkage merge order) and promotes a component to a labeled
// cluster the first time its size reaches minClusterSize; once promoted,
// descendant merges inherit the label. Points whose component never
// reaches the threshold stay labeled -1 (noise).
//
// A component only ever holds one of two states: "pending" (its members
// are still candidate cluster members, none frozen) or "promoted" (it
// reached min_cluster_size and was assigned a label). When a promoted
// component absorbs a pending one via a later, necessarily larger-weight
// merge, the pending side's points did not belong to any component dense
// enough to be a cluster before this late, weak link — so they are frozen
// as permanent noise rather than swept into the surviving label. This is
// the flat-clustering analogue of HDBSCAN's condensed tree: a branch that
// never reaches min_cluster_size "falls out" as noise instead of merging.
func extractFlatClusters(n int, edges []edge, minClusterSize int) []int {
	sort.Slice(edges, func(i, j int) bool { return edges[i].weight < edges[j].weight })

	uf := newUnionFind(n)

	pointLabel := make([]int, n)
	frozen := make([]bool, n)

	for i := range pointLabel {
		pointLabel[i] = -1
	}

	type component struct {
		members []int
		active  int
		label   int // -1 if not yet promoted
	}

	comps := make(map[int]*component, n)
	for i := 0; i < n; i++ {
		comps[i] = &component{members: []int{i}, active: 1, label: -1}
	}

	nextLabel := 0

	freezeAll := func(members []int) {
		for _, p := range members {
			if !frozen[p] {
				frozen[p] = true
			}
		}
	}

	for _, e := range edges {
		ra, rb := uf.find(e.a), uf.find(e.b)
		if ra == rb {
			continue
		}

		a, b := comps[ra], comps[rb]

		var merged *component

		switch {
		case a.label >= 0 && b.label >= 0:
			label := a.label
			if b.active > a.active {
				label = b.label
			}

			merged = &component{
				members: append(a.members, b.members...),
				active:  a.active + b.active,
				label:   label,
			}
		case a.label >= 0:
			freezeAll(b.members)

			merged = &component{members: append(a.members, b.members...), active: a.active, label: a.label}
		case b.label >= 0:
			freezeAll(a.members)

			merged = &component{members: append(a.members, b.members...), active: b.active, label: b.label}
		default:
			allMembers := append(a.members, b.members...)
			active := a.active + b.active

			label := -1
			if active >= minClusterSize {
				label = nextLabel
				nextLabel++

				for _, p := range allMembers {
					pointLabel[p] = label
				}
			}

			merged = &component{members: allMembers, active: active, label: label}
		}

		newRoot := uf.union(ra, rb)
		delete(comps, ra)
		delete(comps, rb)
		comps[newRoot] = merged
	}

	for i := 0; i < n; i++ {
		if frozen[i] {
			pointLabel[i] = -1
		}
	}

	return pointLabel
}

// bundleByLabel groups point indices by label into domain.Cluster values,
// sorted by label ascending with noise (-1) last, each preserving index
// order within the cluster.
func bundleByLabel(labels []int) []domain.Cluster {
	byLabel := make(map[int][]int)

	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}

	var positive []int

	for l := range byLabel {
		if l >= 0 {
			positive = append(positive, l)
		}
	}

	sort.Ints(positive)

	clusters := make([]domain.Cluster, 0, len(byLabel))
	for _, l := range positive {
		clusters = append(clusters, domain.Cluster{Label: l, Indices: byLabel[l]})
	}

	if noise, ok := byLabel[-1]; ok {
		clusters = append(clusters, domain.Cluster{Label: -1, Indices: noise})
	}

	return clusters
}

// unionFind is a standard union-by-size, path-compressed disjoint-set
// structure. Its size only balances unions; the min_cluster_size promotion
// check above counts each component's active members instead.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	size := make([]int, n)

	for i := range parent {
		parent[i] = i
		size[i] = 1
	}

	return &unionFind{parent: parent, size: size}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}

	return x
}

// union merges the components rooted at a and b (a != b) and returns the
// new root.
func (u *unionFind) union(a, b int) int {
	if u.size[a] < u.size[b] {
		a, b = b, a
	}

	u.parent[b] = a
	u.size[a] += u.size[b]

	return a
}
