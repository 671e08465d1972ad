package item

import (
	"sort"

	domitem "github.com/synapse-kb/synapse/internal/domain/item"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges vector and lexical rankings via Reciprocal Rank Fusion.
// fused(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// When an item appears in both lists the vector hit is kept, so its
// cosine similarity survives fusion; rank order follows the fused score.
func fuseRRF(knn, bm25 []domitem.Scored) []domitem.Scored {
	type fused struct {
		res   domitem.Scored
		score float64
	}

	merged := make(map[string]*fused)
	order := make([]string, 0, len(knn)+len(bm25))

	for rank := range knn {
		s := 1.0 / float64(rrfK+rank+1)
		it := knn[rank].Item()
		id := it.ID()
		merged[id] = &fused{res: knn[rank], score: s}
		order = append(order, id)
	}

	for rank := range bm25 {
		s := 1.0 / float64(rrfK+rank+1)
		it := bm25[rank].Item()
		id := it.ID()
		if existing, ok := merged[id]; ok {
			existing.score += s
		} else {
			merged[id] = &fused{res: bm25[rank], score: s}
			order = append(order, id)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return merged[order[i]].score > merged[order[j]].score
	})

	results := make([]domitem.Scored, 0, len(order))
	for _, id := range order {
		results = append(results, merged[id].res)
	}
	return results
}
