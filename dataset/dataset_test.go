package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	erand "golang.org/x/exp/rand"
)

func TestNewDataset_SplitsAtTerminals(t *testing.T) {
	schema := BoxSchema([]int{4}, 2)
	rnd := erand.New(erand.NewSource(10))
	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 4, 25)

	d, err := NewDataset(schema, obs, acts, rews, terms)
	require.NoError(t, err)
	require.Equal(t, 4, d.Len())
	assert.Equal(t, 4*24, d.TransitionCount())

	for i := 0; i < d.Len(); i++ {
		ep, err := d.Episode(i)
		require.NoError(t, err)
		assert.Equal(t, 24, ep.Size())
		head := i * 25
		assert.Equal(t, obs[head], ep.Observations()[0])
		assert.Equal(t, obs[head+24], ep.Observations()[24])
		assert.Equal(t, rews[head:head+25], ep.Rewards())
	}

	// flat accessors reproduce the construction input
	assert.Equal(t, obs, d.Observations())
	assert.Equal(t, acts, d.Actions())
	assert.Equal(t, rews, d.Rewards())
	assert.Equal(t, terms, d.Terminals())

	// appending a fifth episode grows the flat arrays
	obs2, acts2, rews2, terms2 := randomFlatSteps(rnd, schema, 1, 25)
	require.NoError(t, d.Append(obs2, acts2, rews2, terms2))
	assert.Equal(t, 5, d.Len())
	assert.Len(t, d.Observations(), 125)
	assert.Len(t, d.Terminals(), 125)
}

func TestNewDataset_InputValidation(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(11))

	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 2, 10)
	terms[len(terms)-1] = 0.0
	_, err := NewDataset(schema, obs, acts, rews, terms)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	obs, acts, rews, terms = randomFlatSteps(rnd, schema, 2, 10)
	terms[0] = 1.0
	_, err = NewDataset(schema, obs, acts, rews, terms)
	assert.ErrorIs(t, err, ErrEmptyEpisode)

	obs, acts, rews, terms = randomFlatSteps(rnd, schema, 2, 10)
	_, err = NewDataset(schema, obs[:19], acts, rews, terms)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// empty input is a valid empty dataset
	d, err := NewDataset(schema, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestDataset_EpisodeIndexing(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(12))
	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 3, 8)

	d, err := NewDataset(schema, obs, acts, rews, terms)
	require.NoError(t, err)

	for i := 0; i < d.Len(); i++ {
		ep, err := d.Episode(i)
		require.NoError(t, err)
		assert.Same(t, d.Episodes()[i], ep)
	}
	_, err = d.Episode(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = d.Episode(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDataset_Extend(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(13))

	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 2, 6)
	d, err := NewDataset(schema, obs, acts, rews, terms)
	require.NoError(t, err)

	obs2, acts2, rews2, terms2 := randomFlatSteps(rnd, schema, 3, 6)
	other, err := NewDataset(schema, obs2, acts2, rews2, terms2)
	require.NoError(t, err)

	require.NoError(t, d.Extend(other))
	assert.Equal(t, 5, d.Len())
	// episodes carried over by identity
	assert.Same(t, other.Episodes()[0], d.Episodes()[2])

	mismatched, err := NewDataset(BoxSchema([]int{3}, 1), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Extend(mismatched), ErrShapeMismatch)

	discrete, err := NewDataset(DiscreteSchema([]int{2}, 1), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Extend(discrete), ErrShapeMismatch)
}

func TestDataset_ClipReward(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(14))
	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 3, 10)

	d, err := NewDataset(schema, obs, acts, rews, terms)
	require.NoError(t, err)

	d.ClipReward(-1.0, 1.0)
	once := d.Rewards()
	for _, r := range once {
		assert.GreaterOrEqual(t, r, float32(-1.0))
		assert.LessOrEqual(t, r, float32(1.0))
	}

	d.ClipReward(-1.0, 1.0)
	assert.Equal(t, once, d.Rewards())

	// transitions read the clipped values through the backing arrays
	ep := d.Episodes()[0]
	assert.Equal(t, ep.Rewards()[1], ep.Transitions()[0].NextReward())
}

func TestDataset_Sample(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(15))
	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 3, 10)

	d, err := NewDataset(schema, obs, acts, rews, terms)
	require.NoError(t, err)

	batch, err := d.Sample(rnd, 32, 1, 1, 0.99)
	require.NoError(t, err)
	assert.Equal(t, 32, batch.Len())
	for i := 0; i < batch.Len(); i++ {
		tr, err := batch.Get(i)
		require.NoError(t, err)
		found := false
		for _, ep := range d.Episodes() {
			if tr.Episode() == ep {
				found = true
				break
			}
		}
		assert.True(t, found)
	}

	empty, err := NewDataset(schema, nil, nil, nil, nil)
	require.NoError(t, err)
	_, err = empty.Sample(rnd, 8, 1, 1, 0.99)
	assert.ErrorIs(t, err, ErrNoTransitions)
}

func TestDataset_PrebuildTransitions(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(16))
	obs, acts, rews, terms := randomFlatSteps(rnd, schema, 8, 12)

	d, err := NewDataset(schema, obs, acts, rews, terms)
	require.NoError(t, err)

	d.PrebuildTransitions(4)
	heads := make([]*Transition, d.Len())
	for i, ep := range d.Episodes() {
		heads[i] = ep.Transitions()[0]
	}
	// a second build never replaces cached chains
	d.PrebuildTransitions(4)
	for i, ep := range d.Episodes() {
		assert.Same(t, heads[i], ep.Transitions()[0])
	}
}

func TestNewDatasetFromEpisodes(t *testing.T) {
	schema := BoxSchema([]int{2}, 1)
	rnd := erand.New(erand.NewSource(17))

	obs, acts, rews := randomSteps(rnd, schema, 6)
	ep := mustEpisode(schema, obs, acts, rews)

	d, err := NewDatasetFromEpisodes(schema, []*Episode{ep})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
	assert.Same(t, ep, d.Episodes()[0])

	obs2, acts2, rews2 := randomSteps(rnd, BoxSchema([]int{3}, 1), 6)
	other := mustEpisode(BoxSchema([]int{3}, 1), obs2, acts2, rews2)
	_, err = NewDatasetFromEpisodes(schema, []*Episode{ep, other})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
