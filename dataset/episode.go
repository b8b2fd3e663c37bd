package dataset

import (
	"fmt"
	"sync"
)

// Episode owns the raw arrays of one trajectory: N recorded steps of
// observation, action and reward rows. The first step is the reset
// state; the last step is the terminal destination. N recorded steps
// yield N-1 transitions.
//
// The backing arrays are immutable after construction, with the one
// documented exception of reward clipping, which updates rewards in
// place and leaves the cached transition chain valid. Accessors return
// the backing rows; callers must not write to them.
type Episode struct {
	schema       Schema
	observations [][]float32
	actions      [][]float32
	rewards      []float32

	buildOnce   sync.Once
	transitions []*Transition
}

// NewEpisode validates the recorded steps against the schema and wraps
// them into an Episode. Fails with ErrEmptyEpisode for fewer than 2
// steps and ErrShapeMismatch for rows that disagree with the schema.
func NewEpisode(schema Schema, observations [][]float32, actions [][]float32, rewards []float32) (*Episode, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	n := len(observations)
	if len(actions) != n || len(rewards) != n {
		return nil, fmt.Errorf("%w: %d observations, %d actions, %d rewards", ErrShapeMismatch, n, len(actions), len(rewards))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrEmptyEpisode, n)
	}
	for i := 0; i < n; i++ {
		if err := schema.CheckObservation(observations[i]); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if err := schema.CheckAction(actions[i]); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &Episode{
		schema:       schema,
		observations: observations,
		actions:      actions,
		rewards:      rewards,
	}, nil
}

func (e *Episode) Schema() Schema {
	return e.schema
}

func (e *Episode) ObservationShape() []int {
	return e.schema.ObservationShape
}

func (e *Episode) ActionSize() int {
	return e.schema.ActionSize
}

// Size is the number of transitions, one less than the recorded steps.
func (e *Episode) Size() int {
	return len(e.rewards) - 1
}

// Steps is the number of recorded steps.
func (e *Episode) Steps() int {
	return len(e.rewards)
}

func (e *Episode) Observations() [][]float32 {
	return e.observations
}

func (e *Episode) Actions() [][]float32 {
	return e.actions
}

func (e *Episode) Rewards() []float32 {
	return e.rewards
}

// Transitions builds the transition chain on first call and returns the
// cached slice afterwards. The build runs exactly once per episode.
func (e *Episode) Transitions() []*Transition {
	e.buildOnce.Do(func() {
		e.transitions = make([]*Transition, e.Size())
		for i := range e.transitions {
			e.transitions[i] = &Transition{episode: e, index: i}
		}
	})
	return e.transitions
}

// Get returns the i-th transition of the chain.
func (e *Episode) Get(i int) (*Transition, error) {
	if i < 0 || i >= e.Size() {
		return nil, fmt.Errorf("%w: transition %d of %d", ErrIndexOutOfRange, i, e.Size())
	}
	return e.Transitions()[i], nil
}

// ComputeReturn is the undiscounted episode return: the sum of rewards
// credited by transitions. The reward at step 0 belongs to the reset
// state and is not credited.
func (e *Episode) ComputeReturn() float64 {
	ret := 0.0
	for _, r := range e.rewards[1:] {
		ret += float64(r)
	}
	return ret
}

// Suffix returns a fresh episode over the recorded steps from skip
// onward. The two episodes share backing rows but nothing else; the
// suffix builds its own transition chain.
func (e *Episode) Suffix(skip int) (*Episode, error) {
	if skip < 0 || skip >= e.Steps() {
		return nil, fmt.Errorf("%w: suffix from step %d of %d", ErrIndexOutOfRange, skip, e.Steps())
	}
	if e.Steps()-skip < 2 {
		return nil, fmt.Errorf("%w: suffix from step %d leaves %d", ErrEmptyEpisode, skip, e.Steps()-skip)
	}
	return &Episode{
		schema:       e.schema,
		observations: e.observations[skip:],
		actions:      e.actions[skip:],
		rewards:      e.rewards[skip:],
	}, nil
}

func (e *Episode) clipReward(low, high float32) {
	for i, r := range e.rewards {
		if r < low {
			e.rewards[i] = low
		} else if r > high {
			e.rewards[i] = high
		}
	}
}

// stackedObservationAt concatenates the nFrames observation rows ending
// at the given step, replicating the first row when the window reaches
// past the episode start. With stacking not applicable the raw row is
// returned.
func (e *Episode) stackedObservationAt(step int, nFrames int) []float32 {
	if nFrames <= 1 || !e.schema.stackable() {
		return e.observations[step]
	}
	dim := e.schema.FlatDim()
	stacked := make([]float32, 0, nFrames*dim)
	for j := step - nFrames + 1; j <= step; j++ {
		idx := j
		if idx < 0 {
			idx = 0
		}
		stacked = append(stacked, e.observations[idx]...)
	}
	return stacked
}
