package dataset

import (
	"fmt"

	"github.com/zeu5/rl-dataset/util"
)

// MiniBatch holds training-ready parallel arrays built from a list of
// transitions: frame-stacked observations and n-step aggregated next
// values. It is a value object built per training step, never stored.
//
// NextRewards carries the discounted sum over the hops actually taken;
// NStepsUsed records that hop count so consumers discount the target
// with gamma^NStepsUsed[i] instead of a fixed gamma^nSteps.
type MiniBatch struct {
	Observations     [][]float32
	Actions          [][]float32
	Rewards          []float32
	NextObservations [][]float32
	NextActions      [][]float32
	NextRewards      []float32
	Terminals        []float32
	NStepsUsed       []int

	transitions []*Transition
}

// NewMiniBatch builds the batch arrays in input order.
//
// For every transition at position p in an episode of S transitions,
// the builder walks k = min(nSteps, S-p) hops forward. The aggregated
// next reward is the gamma-discounted sum of the hops' next rewards;
// next observation, next action and terminal come from the last hop.
// Observations of image rank are stacked over the nFrames window ending
// at the current step, replicating the first frame past the episode
// start; the next-observation window is shifted k steps forward.
func NewMiniBatch(transitions []*Transition, nFrames int, nSteps int, gamma float64) (*MiniBatch, error) {
	if nFrames < 1 {
		return nil, fmt.Errorf("nFrames must be at least 1, got %d", nFrames)
	}
	if nSteps < 1 {
		return nil, fmt.Errorf("nSteps must be at least 1, got %d", nSteps)
	}
	b := len(transitions)
	batch := &MiniBatch{
		Observations:     make([][]float32, b),
		Actions:          make([][]float32, b),
		Rewards:          make([]float32, b),
		NextObservations: make([][]float32, b),
		NextActions:      make([][]float32, b),
		NextRewards:      make([]float32, b),
		Terminals:        make([]float32, b),
		NStepsUsed:       make([]int, b),
		transitions:      make([]*Transition, b),
	}
	copy(batch.transitions, transitions)

	for i, t := range transitions {
		if i > 0 && !t.episode.schema.Equal(transitions[0].episode.schema) {
			return nil, fmt.Errorf("%w: transition %d has a different schema", ErrShapeMismatch, i)
		}
		ep := t.episode
		p := t.index

		k := util.MinInt(nSteps, ep.Size()-p)

		chain := ep.Transitions()
		aggReward := 0.0
		discount := 1.0
		last := t
		for j := 0; j < k; j++ {
			last = chain[p+j]
			aggReward += discount * float64(last.NextReward())
			discount *= gamma
		}

		batch.Observations[i] = ep.stackedObservationAt(p, nFrames)
		batch.Actions[i] = t.Action()
		batch.Rewards[i] = t.Reward()
		batch.NextObservations[i] = ep.stackedObservationAt(p+k, nFrames)
		batch.NextActions[i] = last.NextAction()
		batch.NextRewards[i] = float32(aggReward)
		batch.Terminals[i] = last.Terminal()
		batch.NStepsUsed[i] = k
	}
	return batch, nil
}

func (b *MiniBatch) Len() int {
	return len(b.transitions)
}

// Get returns the originating transition at batch index i by identity.
func (b *MiniBatch) Get(i int) (*Transition, error) {
	if i < 0 || i >= len(b.transitions) {
		return nil, fmt.Errorf("%w: batch index %d of %d", ErrIndexOutOfRange, i, len(b.transitions))
	}
	return b.transitions[i], nil
}

// Transitions returns the originating transitions in batch order.
func (b *MiniBatch) Transitions() []*Transition {
	return b.transitions
}
