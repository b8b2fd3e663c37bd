package online

import (
	"time"

	erand "golang.org/x/exp/rand"
)

// Policy picks the next action for an observation.
type Policy interface {
	SelectAction(observation []float32) []float32
}

// RandomDiscretePolicy samples a uniform action index. A zero seed
// falls back to the wall clock.
type RandomDiscretePolicy struct {
	numActions int
	rand       *erand.Rand
}

var _ Policy = &RandomDiscretePolicy{}

func NewRandomDiscretePolicy(numActions int, seed uint64) *RandomDiscretePolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixMilli())
	}
	return &RandomDiscretePolicy{
		numActions: numActions,
		rand:       erand.New(erand.NewSource(seed)),
	}
}

func (p *RandomDiscretePolicy) SelectAction(_ []float32) []float32 {
	return []float32{float32(p.rand.Intn(p.numActions))}
}

// RandomContinuousPolicy samples uniformly inside the [low, high] box,
// one bound pair per action dimension.
type RandomContinuousPolicy struct {
	low  []float32
	high []float32
	rand *erand.Rand
}

var _ Policy = &RandomContinuousPolicy{}

func NewRandomContinuousPolicy(low, high []float32, seed uint64) *RandomContinuousPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixMilli())
	}
	return &RandomContinuousPolicy{
		low:  low,
		high: high,
		rand: erand.New(erand.NewSource(seed)),
	}
}

func (p *RandomContinuousPolicy) SelectAction(_ []float32) []float32 {
	action := make([]float32, len(p.low))
	for i := range action {
		span := float64(p.high[i] - p.low[i])
		action[i] = p.low[i] + float32(p.rand.Float64()*span)
	}
	return action
}
