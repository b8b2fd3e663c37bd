package dataset

import (
	erand "golang.org/x/exp/rand"
)

func randomSteps(rnd *erand.Rand, schema Schema, n int) ([][]float32, [][]float32, []float32) {
	observations := make([][]float32, n)
	actions := make([][]float32, n)
	rewards := make([]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, schema.FlatDim())
		for j := range row {
			row[j] = float32(rnd.Float64())
		}
		observations[i] = row
		if schema.Discrete {
			actions[i] = []float32{float32(rnd.Intn(schema.ActionSize))}
		} else {
			a := make([]float32, schema.ActionSize)
			for j := range a {
				a[j] = float32(rnd.Float64())
			}
			actions[i] = a
		}
		rewards[i] = float32(rnd.Float64()*20.0 - 10.0)
	}
	return observations, actions, rewards
}

// randomFlatSteps concatenates nEpisodes runs of stepsPer steps, each
// closed by a terminal flag.
func randomFlatSteps(rnd *erand.Rand, schema Schema, nEpisodes, stepsPer int) ([][]float32, [][]float32, []float32, []float32) {
	n := nEpisodes * stepsPer
	observations := make([][]float32, 0, n)
	actions := make([][]float32, 0, n)
	rewards := make([]float32, 0, n)
	terminals := make([]float32, 0, n)
	for e := 0; e < nEpisodes; e++ {
		obs, acts, rews := randomSteps(rnd, schema, stepsPer)
		observations = append(observations, obs...)
		actions = append(actions, acts...)
		rewards = append(rewards, rews...)
		for i := 0; i < stepsPer-1; i++ {
			terminals = append(terminals, 0.0)
		}
		terminals = append(terminals, 1.0)
	}
	return observations, actions, rewards, terminals
}

func mustEpisode(schema Schema, observations, actions [][]float32, rewards []float32) *Episode {
	ep, err := NewEpisode(schema, observations, actions, rewards)
	if err != nil {
		panic(err)
	}
	return ep
}
