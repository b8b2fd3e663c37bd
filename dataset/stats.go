package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const histogramBins = 10

// Summary describes one scalar series. Std is the population standard
// deviation.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// VectorSummary describes a row series per dimension.
type VectorSummary struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
	Min  []float64 `json:"min"`
	Max  []float64 `json:"max"`
}

// Histogram holds bin counts over len(Dividers)-1 intervals.
type Histogram struct {
	Counts   []float64 `json:"counts"`
	Dividers []float64 `json:"dividers"`
}

// Stats summarizes a dataset: per-episode returns, per-step rewards,
// and per-dimension observation and action statistics. For discrete
// actions ActionHistogram counts occurrences of each action index; for
// continuous actions ActionHistograms holds a fixed-bin histogram per
// dimension.
type Stats struct {
	Return           Summary       `json:"return"`
	Reward           Summary       `json:"reward"`
	Observation      VectorSummary `json:"observation"`
	Action           VectorSummary `json:"action"`
	ActionHistogram  []int         `json:"action_histogram,omitempty"`
	ActionHistograms []Histogram   `json:"action_histograms,omitempty"`
}

// ComputeStats summarizes the dataset over all recorded steps. Returns
// the zero value for a dataset with no episodes.
func (d *Dataset) ComputeStats() Stats {
	if len(d.episodes) == 0 {
		return Stats{}
	}

	returns := make([]float64, len(d.episodes))
	for i, ep := range d.episodes {
		returns[i] = ep.ComputeReturn()
	}

	steps := 0
	for _, ep := range d.episodes {
		steps += ep.Steps()
	}
	rewards := make([]float64, 0, steps)
	for _, ep := range d.episodes {
		for _, r := range ep.rewards {
			rewards = append(rewards, float64(r))
		}
	}

	stats := Stats{
		Return:      summarize(returns),
		Reward:      summarize(rewards),
		Observation: summarizeRows(d.episodes, func(ep *Episode) [][]float32 { return ep.observations }, d.schema.FlatDim()),
		Action:      summarizeRows(d.episodes, func(ep *Episode) [][]float32 { return ep.actions }, d.schema.ActionDim()),
	}

	if d.schema.Discrete {
		counts := make([]int, d.schema.ActionSize)
		for _, ep := range d.episodes {
			for _, row := range ep.actions {
				counts[int(row[0])]++
			}
		}
		stats.ActionHistogram = counts
	} else {
		stats.ActionHistograms = make([]Histogram, d.schema.ActionSize)
		for dim := 0; dim < d.schema.ActionSize; dim++ {
			col := make([]float64, 0, steps)
			for _, ep := range d.episodes {
				for _, row := range ep.actions {
					col = append(col, float64(row[dim]))
				}
			}
			stats.ActionHistograms[dim] = histogram(col)
		}
	}
	return stats
}

func summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	return Summary{
		Mean: stat.Mean(xs, nil),
		Std:  stat.PopStdDev(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
}

func summarizeRows(episodes []*Episode, rows func(*Episode) [][]float32, dim int) VectorSummary {
	out := VectorSummary{
		Mean: make([]float64, dim),
		Std:  make([]float64, dim),
		Min:  make([]float64, dim),
		Max:  make([]float64, dim),
	}
	col := make([]float64, 0)
	for d := 0; d < dim; d++ {
		col = col[:0]
		for _, ep := range episodes {
			for _, row := range rows(ep) {
				col = append(col, float64(row[d]))
			}
		}
		s := summarize(col)
		out.Mean[d] = s.Mean
		out.Std[d] = s.Std
		out.Min[d] = s.Min
		out.Max[d] = s.Max
	}
	return out
}

// histogram buckets xs into histogramBins evenly spaced bins between
// the series min and max. stat.Histogram needs sorted samples and
// strictly increasing dividers; a constant series widens to a unit
// interval.
func histogram(xs []float64) Histogram {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	low := sorted[0]
	high := sorted[len(sorted)-1]
	if low == high {
		high = low + 1.0
	}
	dividers := make([]float64, histogramBins+1)
	floats.Span(dividers, low, high)
	// stat.Histogram wants max(x) strictly below the last divider
	dividers[len(dividers)-1] = math.Nextafter(high, math.Inf(1))

	counts := make([]float64, histogramBins)
	stat.Histogram(counts, dividers, sorted, nil)
	return Histogram{Counts: counts, Dividers: dividers}
}
