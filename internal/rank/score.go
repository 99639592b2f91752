// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

// Signal weights. They sum to 1.
const (
	WeightSim       = 0.45
	WeightPageRank  = 0.20
	WeightRecency   = 0.15
	WeightLogCites  = 0.10
	WeightVenue     = 0.07
	WeightBenchmark = 0.03
)

// Signals holds the six per-paper inputs, each in [0,1].
type Signals struct {
	Sim       float64 `json:"sim" yaml:"sim"`
	PageRank  float64 `json:"pagerank" yaml:"pagerank"`
	Recency   float64 `json:"recency" yaml:"recency"`
	LogCites  float64 `json:"log_cites" yaml:"log_cites"`
	Venue     float64 `json:"venue" yaml:"venue"`
	Benchmark float64 `json:"benchmark" yaml:"benchmark"`
}

// Combine returns the weighted score of s.
func Combine(s Signals) float64 {
	return WeightSim*s.Sim +
		WeightPageRank*s.PageRank +
		WeightRecency*s.Recency +
		WeightLogCites*s.LogCites +
		WeightVenue*s.Venue +
		WeightBenchmark*s.Benchmark
}

// Inputs are the signal maps keyed by paper id. Missing entries count as 0.
type Inputs struct {
	Sim       map[string]float64
	PageRank  map[string]float64
	Recency   map[string]float64
	LogCites  map[string]float64
	Venue     map[string]float64
	Benchmark map[string]float64
}

// For collects the signals of one paper.
func (in Inputs) For(id string) Signals {
	return Signals{
		Sim:       in.Sim[id],
		PageRank:  in.PageRank[id],
		Recency:   in.Recency[id],
		LogCites:  in.LogCites[id],
		Venue:     in.Venue[id],
		Benchmark: in.Benchmark[id],
	}
}

// Score returns the combined score of every id.
func Score(ids []string, in Inputs) map[string]float64 {
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = Combine(in.For(id))
	}
	return out
}
