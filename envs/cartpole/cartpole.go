package cartpole

import (
	"fmt"
	"math"
	"time"

	erand "golang.org/x/exp/rand"

	"github.com/zeu5/rl-dataset/dataset"
	"github.com/zeu5/rl-dataset/online"
)

// Pole-balancing dynamics, Euler integrated at 20ms per step.
const (
	gravity        = 9.81
	cartMass       = 1.0
	poleMass       = 0.1
	poleHalfLength = 0.5
	totalMass      = cartMass + poleMass
	poleMassLength = poleMass * poleHalfLength
	pushForce      = 10.0
	tau            = 0.02

	positionLimit = 2.4
	angleLimit    = 12.0 * math.Pi / 180.0
)

// MaxEpisodeSteps caps a run; surviving this long ends the episode
// with the survival reward instead of the failure reward.
const MaxEpisodeSteps = 500

// Env balances a pole on a cart with two discrete push actions, 0 for
// left and 1 for right. The observation is [position, velocity, angle,
// angular velocity]. A run ends when the cart leaves the track, the
// pole falls past 12 degrees or the step cap is hit; every step pays
// reward 1 except the one that fails early, which pays 0.
type Env struct {
	position  float64
	velocity  float64
	angle     float64
	angleRate float64

	steps  int
	active bool
	schema dataset.Schema
	rand   *erand.Rand
}

var _ online.Environment = &Env{}

// New creates an environment with its own random source. A zero seed
// falls back to the wall clock.
func New(seed uint64) *Env {
	if seed == 0 {
		seed = uint64(time.Now().UnixMilli())
	}
	return &Env{
		schema: dataset.DiscreteSchema([]int{4}, 2),
		rand:   erand.New(erand.NewSource(seed)),
	}
}

func (e *Env) Schema() dataset.Schema {
	return e.schema
}

// Reset draws a fresh near-upright state, each component uniform in
// [-0.05, 0.05).
func (e *Env) Reset() ([]float32, error) {
	e.position = e.rand.Float64()*0.1 - 0.05
	e.velocity = e.rand.Float64()*0.1 - 0.05
	e.angle = e.rand.Float64()*0.1 - 0.05
	e.angleRate = e.rand.Float64()*0.1 - 0.05
	e.steps = 0
	e.active = true
	return e.observation(), nil
}

func (e *Env) Step(action []float32) (online.StepResult, error) {
	if !e.active {
		return online.StepResult{}, fmt.Errorf("episode is over, call Reset first")
	}
	if err := e.schema.CheckAction(action); err != nil {
		return online.StepResult{}, err
	}

	force := -pushForce
	if int(action[0]) == 1 {
		force = pushForce
	}

	cosAngle := math.Cos(e.angle)
	sinAngle := math.Sin(e.angle)
	temp := (force + poleMassLength*e.angleRate*e.angleRate*sinAngle) / totalMass
	angleAcc := (gravity*sinAngle - cosAngle*temp) /
		(poleHalfLength * (4.0/3.0 - poleMass*cosAngle*cosAngle/totalMass))
	positionAcc := temp - poleMassLength*angleAcc*cosAngle/totalMass

	e.position += tau * e.velocity
	e.velocity += tau * positionAcc
	e.angle += tau * e.angleRate
	e.angleRate += tau * angleAcc
	e.steps++

	failed := e.position < -positionLimit || e.position > positionLimit ||
		e.angle < -angleLimit || e.angle > angleLimit
	terminal := failed || e.steps >= MaxEpisodeSteps
	reward := float32(1)
	if failed && e.steps < MaxEpisodeSteps {
		reward = 0
	}
	if terminal {
		e.active = false
	}
	return online.StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Terminal:    terminal,
	}, nil
}

func (e *Env) observation() []float32 {
	return []float32{
		float32(e.position),
		float32(e.velocity),
		float32(e.angle),
		float32(e.angleRate),
	}
}
