package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	erand "golang.org/x/exp/rand"
)

func TestNewEpisode_Validation(t *testing.T) {
	schema := BoxSchema([]int{3}, 2)
	rnd := erand.New(erand.NewSource(1))

	obs, acts, rews := randomSteps(rnd, schema, 1)
	_, err := NewEpisode(schema, obs, acts, rews)
	assert.ErrorIs(t, err, ErrEmptyEpisode)

	obs, acts, rews = randomSteps(rnd, schema, 5)
	_, err = NewEpisode(schema, obs[:4], acts, rews)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	obs, acts, rews = randomSteps(rnd, schema, 5)
	obs[2] = []float32{1.0}
	_, err = NewEpisode(schema, obs, acts, rews)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	obs, acts, rews = randomSteps(rnd, schema, 5)
	acts[3] = []float32{1.0, 2.0, 3.0}
	_, err = NewEpisode(schema, obs, acts, rews)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewEpisode_DiscreteActionBounds(t *testing.T) {
	schema := DiscreteSchema([]int{2}, 3)
	rnd := erand.New(erand.NewSource(2))

	obs, acts, rews := randomSteps(rnd, schema, 4)
	acts[1] = []float32{3.0}
	_, err := NewEpisode(schema, obs, acts, rews)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	obs, acts, rews = randomSteps(rnd, schema, 4)
	acts[1] = []float32{-1.0}
	_, err = NewEpisode(schema, obs, acts, rews)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	obs, acts, rews = randomSteps(rnd, schema, 4)
	acts[1] = []float32{2.0}
	ep, err := NewEpisode(schema, obs, acts, rews)
	require.NoError(t, err)
	assert.Equal(t, 2, ep.Transitions()[1].ActionIndex())
}

func TestEpisode_TransitionChain(t *testing.T) {
	schema := BoxSchema([]int{4}, 2)
	rnd := erand.New(erand.NewSource(3))
	steps := 10
	obs, acts, rews := randomSteps(rnd, schema, steps)

	ep, err := NewEpisode(schema, obs, acts, rews)
	require.NoError(t, err)
	require.Equal(t, steps-1, ep.Size())
	require.Equal(t, steps, ep.Steps())

	chain := ep.Transitions()
	require.Len(t, chain, steps-1)
	for i, tr := range chain {
		assert.Equal(t, obs[i], tr.Observation())
		assert.Equal(t, acts[i], tr.Action())
		assert.Equal(t, rews[i], tr.Reward())
		assert.Equal(t, obs[i+1], tr.NextObservation())
		assert.Equal(t, acts[i+1], tr.NextAction())
		assert.Equal(t, rews[i+1], tr.NextReward())
		if i == steps-2 {
			assert.Equal(t, float32(1.0), tr.Terminal())
		} else {
			assert.Equal(t, float32(0.0), tr.Terminal())
		}
	}

	// forward walk from the head covers the whole chain
	count := 0
	tr := chain[0]
	for {
		next, ok := tr.Next()
		if !ok {
			break
		}
		tr = next
		count++
	}
	assert.Equal(t, steps-2, count)
	assert.Same(t, chain[len(chain)-1], tr)

	// backward walk from the tail
	count = 0
	for {
		prev, ok := tr.Prev()
		if !ok {
			break
		}
		tr = prev
		count++
	}
	assert.Equal(t, steps-2, count)
	assert.Same(t, chain[0], tr)
}

func TestEpisode_TransitionsCached(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(4))
	obs, acts, rews := randomSteps(rnd, schema, 6)

	ep := mustEpisode(schema, obs, acts, rews)
	first := ep.Transitions()
	second := ep.Transitions()
	for i := range first {
		assert.Same(t, first[i], second[i])
	}

	got, err := ep.Get(2)
	require.NoError(t, err)
	assert.Same(t, first[2], got)

	_, err = ep.Get(ep.Size())
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = ep.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestEpisode_ComputeReturn(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(5))
	obs, acts, rews := randomSteps(rnd, schema, 8)

	ep := mustEpisode(schema, obs, acts, rews)
	want := 0.0
	for _, r := range rews[1:] {
		want += float64(r)
	}
	assert.InDelta(t, want, ep.ComputeReturn(), 1e-9)
}

func TestEpisode_Suffix(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(6))
	obs, acts, rews := randomSteps(rnd, schema, 10)

	ep := mustEpisode(schema, obs, acts, rews)
	suffix, err := ep.Suffix(3)
	require.NoError(t, err)
	assert.Equal(t, 7, suffix.Steps())
	assert.Equal(t, 6, suffix.Size())
	assert.Equal(t, obs[3], suffix.Observations()[0])
	assert.Equal(t, rews[9], suffix.Rewards()[suffix.Steps()-1])

	// suffix builds its own chain, the source episode stays intact
	assert.Equal(t, float32(1.0), suffix.Transitions()[suffix.Size()-1].Terminal())
	assert.Equal(t, float32(0.0), ep.Transitions()[3].Terminal())

	_, err = ep.Suffix(9)
	assert.ErrorIs(t, err, ErrEmptyEpisode)
	_, err = ep.Suffix(10)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = ep.Suffix(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
