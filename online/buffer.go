package online

import (
	"fmt"
	"sync"
	"time"

	erand "golang.org/x/exp/rand"

	"github.com/zeu5/rl-dataset/dataset"
)

// Config parameterizes a ReplayBuffer. NFrames, NSteps and Gamma apply
// to every sampled minibatch; zero values take the defaults 1, 1 and
// 0.99. Episodes pre-seeds the buffer, subject to the same capacity
// rule as later admissions. A zero Seed falls back to the wall clock.
type Config struct {
	MaxLen int
	Schema dataset.Schema

	NFrames int
	NSteps  int
	Gamma   float64
	Seed    uint64

	Episodes []*dataset.Episode
}

// ReplayBuffer is a bounded FIFO collection of recent episodes fed by
// an environment loop. Steps accumulate into an in-progress run; a
// terminal append finalizes the run into an episode and admits it.
// When admission pushes the total transition count over MaxLen, whole
// episodes are evicted from the oldest end, and the episode straddling
// the boundary is truncated by rebuilding its remaining steps as a
// fresh self-consistent episode. The count therefore never exceeds
// MaxLen and sits at exactly MaxLen after any overflow.
//
// One mutex serializes append, admission, eviction and sampling, so a
// sampler sees either the pre- or post-eviction state, never a
// half-evicted episode.
type ReplayBuffer struct {
	mtx    *sync.Mutex
	config Config

	episodes []*dataset.Episode
	total    int

	pendingObservations [][]float32
	pendingActions      [][]float32
	pendingRewards      []float32

	rand *erand.Rand
}

func NewReplayBuffer(config Config) (*ReplayBuffer, error) {
	if err := config.Schema.Validate(); err != nil {
		return nil, err
	}
	if config.MaxLen < 1 {
		return nil, fmt.Errorf("maxlen must be at least 1, got %d", config.MaxLen)
	}
	if config.NFrames == 0 {
		config.NFrames = 1
	}
	if config.NSteps == 0 {
		config.NSteps = 1
	}
	if config.Gamma == 0 {
		config.Gamma = 0.99
	}
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixMilli())
	}
	b := &ReplayBuffer{
		mtx:                 &sync.Mutex{},
		config:              config,
		episodes:            make([]*dataset.Episode, 0),
		pendingObservations: make([][]float32, 0),
		pendingActions:      make([][]float32, 0),
		pendingRewards:      make([]float32, 0),
		rand:                erand.New(erand.NewSource(seed)),
	}
	for _, ep := range config.Episodes {
		if err := b.admit(ep); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Append accumulates one step of the in-progress run. A terminal step
// finalizes the run into an episode and admits it under the capacity
// rule. A terminal arriving before the run holds 2 steps fails with
// ErrEmptyEpisode; the accumulated steps are discarded either way.
func (b *ReplayBuffer) Append(observation []float32, action []float32, reward float32, terminal bool) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if err := b.config.Schema.CheckObservation(observation); err != nil {
		return err
	}
	if err := b.config.Schema.CheckAction(action); err != nil {
		return err
	}
	b.pendingObservations = append(b.pendingObservations, observation)
	b.pendingActions = append(b.pendingActions, action)
	b.pendingRewards = append(b.pendingRewards, reward)
	if !terminal {
		return nil
	}

	ep, err := dataset.NewEpisode(b.config.Schema, b.pendingObservations, b.pendingActions, b.pendingRewards)
	b.pendingObservations = make([][]float32, 0)
	b.pendingActions = make([][]float32, 0)
	b.pendingRewards = make([]float32, 0)
	if err != nil {
		return err
	}
	return b.admitLocked(ep)
}

// Discard drops the accumulated steps of the in-progress run without
// finalizing an episode. Retained episodes are untouched.
func (b *ReplayBuffer) Discard() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.pendingObservations = make([][]float32, 0)
	b.pendingActions = make([][]float32, 0)
	b.pendingRewards = make([]float32, 0)
}

// AppendEpisode admits a pre-built episode directly, under the same
// capacity rule as terminal appends.
func (b *ReplayBuffer) AppendEpisode(ep *dataset.Episode) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.admit(ep)
}

func (b *ReplayBuffer) admit(ep *dataset.Episode) error {
	if !ep.Schema().Equal(b.config.Schema) {
		return fmt.Errorf("%w: episode schema %v/%d does not match buffer %v/%d", dataset.ErrShapeMismatch,
			ep.ObservationShape(), ep.ActionSize(), b.config.Schema.ObservationShape, b.config.Schema.ActionSize)
	}
	return b.admitLocked(ep)
}

func (b *ReplayBuffer) admitLocked(ep *dataset.Episode) error {
	b.episodes = append(b.episodes, ep)
	b.total += ep.Size()

	for b.total > b.config.MaxLen {
		head := b.episodes[0]
		over := b.total - b.config.MaxLen
		if head.Size() <= over {
			b.episodes = b.episodes[1:]
			b.total -= head.Size()
			continue
		}
		// each skipped recorded step drops exactly one transition
		suffix, err := head.Suffix(over)
		if err != nil {
			return err
		}
		b.episodes[0] = suffix
		b.total -= over
	}
	return nil
}

// Len is the number of retained transitions across finalized episodes.
// Steps of the in-progress run are not counted until their terminal
// arrives.
func (b *ReplayBuffer) Len() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.total
}

// Episodes returns a snapshot of the retained episodes, oldest first.
func (b *ReplayBuffer) Episodes() []*dataset.Episode {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	out := make([]*dataset.Episode, len(b.episodes))
	copy(out, b.episodes)
	return out
}

// Sample draws batchSize transitions uniformly at random with
// replacement across the retained episodes and builds a minibatch with
// the buffer's stacking and return-aggregation parameters.
func (b *ReplayBuffer) Sample(batchSize int) (*dataset.MiniBatch, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	transitions, err := dataset.SampleTransitions(b.rand, b.episodes, batchSize)
	if err != nil {
		return nil, err
	}
	return dataset.NewMiniBatch(transitions, b.config.NFrames, b.config.NSteps, b.config.Gamma)
}
