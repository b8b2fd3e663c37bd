package online

import "github.com/zeu5/rl-dataset/dataset"

// StepResult is the outcome of one environment step.
type StepResult struct {
	Observation []float32
	Reward      float32
	Terminal    bool
}

// Environment is the minimal contract the collector drives: reset to
// an initial observation, then step with actions until terminal. The
// schema declares the observation and action shapes the environment
// produces and accepts.
type Environment interface {
	Schema() dataset.Schema
	Reset() ([]float32, error)
	Step(action []float32) (StepResult, error)
}
