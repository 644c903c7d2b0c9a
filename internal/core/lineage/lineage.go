package lineage

import (
	"sort"

	"github.com/agenthands/nobelium/internal/core/model"
)

// Detector finds mentorship lineages: clusters of scholars connected through
// MENTORED edges. Direction does not matter for membership, so the adjacency
// is treated as undirected. Clusters of fewer than two members are dropped.
type Detector interface {
	Detect(nodes []string, edges [][2]string) ([]model.Lineage, error)
}

// NewDetector returns the default detector.
func NewDetector() Detector {
	return NewLabelPropagationDetector()
}

// ComponentDetector clusters by plain connectivity: every connected component
// is one lineage.
type ComponentDetector struct{}

func NewComponentDetector() *ComponentDetector {
	return &ComponentDetector{}
}

func (d *ComponentDetector) Detect(nodes []string, edges [][2]string) ([]model.Lineage, error) {
	adj, order := buildAdjacency(nodes, edges)

	visited := make(map[string]bool)
	var clusters [][]string
	for _, id := range order {
		if visited[id] {
			continue
		}
		var component []string
		d.dfs(id, adj, visited, &component)
		if len(component) >= 2 {
			clusters = append(clusters, component)
		}
	}
	return toLineages(clusters), nil
}

func (d *ComponentDetector) dfs(u string, adj map[string]map[string]int, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	neighbors := make([]string, 0, len(adj[u]))
	for v := range adj[u] {
		neighbors = append(neighbors, v)
	}
	sort.Strings(neighbors)
	for _, v := range neighbors {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}

// buildAdjacency returns the undirected weighted adjacency and the sorted
// node order. Edges whose endpoints are not in the node list are ignored.
func buildAdjacency(nodes []string, edges [][2]string) (map[string]map[string]int, []string) {
	adj := make(map[string]map[string]int, len(nodes))
	for _, id := range nodes {
		if adj[id] == nil {
			adj[id] = make(map[string]int)
		}
	}
	for _, e := range edges {
		source, target := e[0], e[1]
		if adj[source] == nil || adj[target] == nil || source == target {
			continue
		}
		adj[source][target]++
		adj[target][source]++
	}

	order := make([]string, 0, len(adj))
	for id := range adj {
		order = append(order, id)
	}
	sort.Strings(order)
	return adj, order
}

// toLineages sorts members within each cluster and clusters by their first
// member, then numbers them 1..n. Re-running on the same graph yields the
// same ids.
func toLineages(clusters [][]string) []model.Lineage {
	for _, c := range clusters {
		sort.Strings(c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i][0] < clusters[j][0]
	})

	lineages := make([]model.Lineage, 0, len(clusters))
	for i, c := range clusters {
		lineages = append(lineages, model.Lineage{ID: i + 1, Members: c})
	}
	return lineages
}

// NodesFromEdges derives the node set of an adjacency list, sorted. Handy
// when the caller has only the edge list.
func NodesFromEdges(edges [][2]string) []string {
	seen := make(map[string]bool)
	var nodes []string
	for _, e := range edges {
		for _, id := range e {
			if id != "" && !seen[id] {
				seen[id] = true
				nodes = append(nodes, id)
			}
		}
	}
	sort.Strings(nodes)
	return nodes
}
