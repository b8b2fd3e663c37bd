package dataset

import (
	"fmt"
	"sync"

	erand "golang.org/x/exp/rand"
)

// Dataset owns an ordered collection of episodes sharing one schema.
// It is built either from flat step arrays, split into episodes at
// terminal boundaries, or from pre-built episodes.
//
// Mutation (Append, Extend, ClipReward) assumes an exclusive writer;
// concurrent readers during a mutating call are caller responsibility.
type Dataset struct {
	schema   Schema
	episodes []*Episode
}

// NewDataset partitions flat step arrays into episodes. A run of
// non-terminal steps followed by one terminal step forms one episode;
// the final step must be terminal. The dataset takes ownership of the
// rows; callers must not mutate them afterwards.
func NewDataset(schema Schema, observations [][]float32, actions [][]float32, rewards []float32, terminals []float32) (*Dataset, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	episodes, err := splitEpisodes(schema, observations, actions, rewards, terminals)
	if err != nil {
		return nil, err
	}
	return &Dataset{schema: schema, episodes: episodes}, nil
}

// NewDatasetFromEpisodes wraps pre-built episodes sharing the schema.
func NewDatasetFromEpisodes(schema Schema, episodes []*Episode) (*Dataset, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	for i, ep := range episodes {
		if !ep.Schema().Equal(schema) {
			return nil, fmt.Errorf("%w: episode %d has a different schema", ErrShapeMismatch, i)
		}
	}
	out := make([]*Episode, len(episodes))
	copy(out, episodes)
	return &Dataset{schema: schema, episodes: out}, nil
}

func splitEpisodes(schema Schema, observations [][]float32, actions [][]float32, rewards []float32, terminals []float32) ([]*Episode, error) {
	n := len(observations)
	if len(actions) != n || len(rewards) != n || len(terminals) != n {
		return nil, fmt.Errorf("%w: %d observations, %d actions, %d rewards, %d terminals", ErrShapeMismatch, n, len(actions), len(rewards), len(terminals))
	}
	episodes := make([]*Episode, 0)
	start := 0
	for i := 0; i < n; i++ {
		if terminals[i] == 0 {
			continue
		}
		ep, err := NewEpisode(schema, observations[start:i+1], actions[start:i+1], rewards[start:i+1])
		if err != nil {
			return nil, fmt.Errorf("episode %d: %w", len(episodes), err)
		}
		episodes = append(episodes, ep)
		start = i + 1
	}
	if start != n {
		return nil, fmt.Errorf("%w: %d trailing steps not closed by a terminal", ErrShapeMismatch, n-start)
	}
	return episodes, nil
}

func (d *Dataset) Schema() Schema {
	return d.schema
}

func (d *Dataset) ObservationShape() []int {
	return d.schema.ObservationShape
}

func (d *Dataset) ActionSize() int {
	return d.schema.ActionSize
}

func (d *Dataset) DiscreteAction() bool {
	return d.schema.Discrete
}

// Len is the number of episodes.
func (d *Dataset) Len() int {
	return len(d.episodes)
}

// Episode returns the i-th episode by identity.
func (d *Dataset) Episode(i int) (*Episode, error) {
	if i < 0 || i >= len(d.episodes) {
		return nil, fmt.Errorf("%w: episode %d of %d", ErrIndexOutOfRange, i, len(d.episodes))
	}
	return d.episodes[i], nil
}

// Episodes returns the episode list; callers must not modify it.
func (d *Dataset) Episodes() []*Episode {
	return d.episodes
}

// TransitionCount is the total number of transitions across episodes.
func (d *Dataset) TransitionCount() int {
	total := 0
	for _, ep := range d.episodes {
		total += ep.Size()
	}
	return total
}

// Append parses additional flat step arrays and appends the resulting
// episodes. Existing episodes are never mutated.
func (d *Dataset) Append(observations [][]float32, actions [][]float32, rewards []float32, terminals []float32) error {
	episodes, err := splitEpisodes(d.schema, observations, actions, rewards, terminals)
	if err != nil {
		return err
	}
	d.episodes = append(d.episodes, episodes...)
	return nil
}

// Extend appends the other dataset's episodes by identity. Fails with
// ErrShapeMismatch when the schemas disagree.
func (d *Dataset) Extend(other *Dataset) error {
	if !d.schema.Equal(other.schema) {
		return fmt.Errorf("%w: cannot extend %v/%d with %v/%d", ErrShapeMismatch,
			d.schema.ObservationShape, d.schema.ActionSize, other.schema.ObservationShape, other.schema.ActionSize)
	}
	d.episodes = append(d.episodes, other.episodes...)
	return nil
}

// ClipReward clamps every stored reward into [low, high] in place. The
// transition chains stay valid: transitions read rewards through the
// backing arrays. Idempotent.
func (d *Dataset) ClipReward(low, high float32) {
	for _, ep := range d.episodes {
		ep.clipReward(low, high)
	}
}

// Observations concatenates the episodes' observation rows in order.
func (d *Dataset) Observations() [][]float32 {
	out := make([][]float32, 0)
	for _, ep := range d.episodes {
		out = append(out, ep.observations...)
	}
	return out
}

// Actions concatenates the episodes' action rows in order.
func (d *Dataset) Actions() [][]float32 {
	out := make([][]float32, 0)
	for _, ep := range d.episodes {
		out = append(out, ep.actions...)
	}
	return out
}

// Rewards concatenates the episodes' rewards in order.
func (d *Dataset) Rewards() []float32 {
	out := make([]float32, 0)
	for _, ep := range d.episodes {
		out = append(out, ep.rewards...)
	}
	return out
}

// Terminals reconstructs the flat terminal flags: 0 for every step of
// an episode except its last.
func (d *Dataset) Terminals() []float32 {
	out := make([]float32, 0)
	for _, ep := range d.episodes {
		for i := 0; i < ep.Steps()-1; i++ {
			out = append(out, 0.0)
		}
		out = append(out, 1.0)
	}
	return out
}

// Sample draws batchSize transitions uniformly at random with
// replacement across all episodes and builds a minibatch with the
// given stacking and return-aggregation parameters.
func (d *Dataset) Sample(rnd *erand.Rand, batchSize int, nFrames int, nSteps int, gamma float64) (*MiniBatch, error) {
	transitions, err := SampleTransitions(rnd, d.episodes, batchSize)
	if err != nil {
		return nil, err
	}
	return NewMiniBatch(transitions, nFrames, nSteps, gamma)
}

// PrebuildTransitions builds every episode's transition chain, across
// a pool of workers when parallelism is above one. Chain builds of
// distinct episodes are independent; a single episode's build runs
// sequentially within one worker.
func (d *Dataset) PrebuildTransitions(parallelism int) {
	if parallelism <= 1 || len(d.episodes) <= 1 {
		for _, ep := range d.episodes {
			ep.Transitions()
		}
		return
	}
	wg := new(sync.WaitGroup)
	workCh := make(chan *Episode, parallelism)
	for i := 0; i < parallelism; i++ {
		go func() {
			for ep := range workCh {
				ep.Transitions()
				wg.Done()
			}
		}()
	}
	for _, ep := range d.episodes {
		wg.Add(1)
		workCh <- ep
	}
	close(workCh)
	wg.Wait()
}
