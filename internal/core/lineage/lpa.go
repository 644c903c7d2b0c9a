package lineage

import (
	"sort"

	"github.com/agenthands/nobelium/internal/core/model"
)

// LabelPropagationDetector clusters by label propagation: every scholar
// starts with its own label, then repeatedly adopts the label carried by the
// weighted majority of its neighbors until no label changes. Densely
// mentoring groups keep their label against a single bridge edge, so two
// schools joined by one cross-mentorship stay separate lineages.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{MaxIterations: 20}
}

func (d *LabelPropagationDetector) Detect(nodes []string, edges [][2]string) ([]model.Lineage, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	adj, order := buildAdjacency(nodes, edges)

	labels := make(map[string]string, len(order))
	for _, id := range order {
		labels[id] = id
	}

	// Nodes are visited in sorted order and ties break on the largest label,
	// so the outcome does not depend on map iteration.
	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for _, u := range order {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			max := 0
			for v, weight := range neighbors {
				label := labels[v]
				counts[label] += weight
				if counts[label] > max {
					max = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == max {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[u] != best {
				labels[u] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	grouped := make(map[string][]string)
	for id, label := range labels {
		grouped[label] = append(grouped[label], id)
	}
	var clusters [][]string
	for _, members := range grouped {
		if len(members) >= 2 {
			clusters = append(clusters, members)
		}
	}
	return toLineages(clusters), nil
}
