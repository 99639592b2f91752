// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"sort"

	"github.com/pdiddy/citegraph/pkg/types"
)

// Unassigned is the community bucket for ids without a label.
const Unassigned = -1

// byScore sorts ids by score descending, ties by ascending id.
func byScore(ids []string, scores map[string]float64) {
	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
}

// TopN returns the n best-scoring ids.
func TopN(scores map[string]float64, n int) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	byScore(ids, scores)
	if n >= 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// Diversified picks n ids round-robin across communities. Each community's
// members are taken best first; communities are visited in ascending id
// order, with unlabelled ids pooled under Unassigned.
func Diversified(scores map[string]float64, labels map[string]int, n int) []string {
	buckets := make(map[int][]string)
	for id := range scores {
		c, ok := labels[id]
		if !ok {
			c = Unassigned
		}
		buckets[c] = append(buckets[c], id)
	}
	order := make([]int, 0, len(buckets))
	for c, ids := range buckets {
		byScore(ids, scores)
		order = append(order, c)
	}
	sort.Ints(order)

	out := make([]string, 0, max(0, n))
	for len(out) < n {
		took := false
		for _, c := range order {
			if len(out) == n {
				break
			}
			if len(buckets[c]) == 0 {
				continue
			}
			out = append(out, buckets[c][0])
			buckets[c] = buckets[c][1:]
			took = true
		}
		if !took {
			break
		}
	}
	return out
}

// Criteria restricts a ranked list.
type Criteria struct {
	MinYear               int
	RequireClassification bool
	RequireBenchmark      bool
}

// CriteriaFrom extracts the filter settings of cfg.
func CriteriaFrom(cfg types.SelectionConfig) Criteria {
	return Criteria{
		MinYear:               cfg.MinYear,
		RequireClassification: cfg.RequireClassification,
		RequireBenchmark:      cfg.RequireBenchmark,
	}
}

// Filter keeps the ids whose paper satisfies every criterion, in input
// order. Ids without a paper are dropped, as are papers with an unknown
// year when MinYear is set.
func Filter(ids []string, papers map[string]types.Paper, c Criteria) []string {
	var out []string
	for _, id := range ids {
		p, ok := papers[id]
		if !ok {
			continue
		}
		if c.MinYear > 0 && (p.Year == 0 || p.Year < c.MinYear) {
			continue
		}
		if c.RequireClassification && !p.IsClassification {
			continue
		}
		if c.RequireBenchmark && !p.MentionsBenchmark {
			continue
		}
		out = append(out, id)
	}
	return out
}
