package dataset

import (
	"fmt"

	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SampleTransitions draws batchSize transitions uniformly at random
// with replacement across the episodes' combined transition pool. Each
// draw picks an episode weighted by its transition count, then a
// uniform position within it; together that is uniform over the pool.
// A fresh Weighted is built per draw since Take consumes the chosen
// weight.
func SampleTransitions(rnd *erand.Rand, episodes []*Episode, batchSize int) ([]*Transition, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", batchSize)
	}
	weights := make([]float64, len(episodes))
	total := 0
	for i, ep := range episodes {
		weights[i] = float64(ep.Size())
		total += ep.Size()
	}
	if total == 0 {
		return nil, ErrNoTransitions
	}
	out := make([]*Transition, batchSize)
	for i := range out {
		j, ok := sampleuv.NewWeighted(weights, rnd).Take()
		if !ok {
			return nil, ErrNoTransitions
		}
		ep := episodes[j]
		out[i] = ep.Transitions()[rnd.Intn(ep.Size())]
	}
	return out, nil
}
