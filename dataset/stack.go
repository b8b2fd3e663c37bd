package dataset

import "fmt"

// StackedObservation accumulates the last nFrames observations of a
// live stream for inference-time frame stacking. Slots that were never
// filled evaluate to zero: at stream start there is no prior context to
// edge-replicate, unlike minibatch stacking inside a recorded episode.
type StackedObservation struct {
	dim     int
	nFrames int
	stack   []float32
}

func NewStackedObservation(observationShape []int, nFrames int) (*StackedObservation, error) {
	if nFrames < 1 {
		return nil, fmt.Errorf("nFrames must be at least 1, got %d", nFrames)
	}
	dim := 1
	for _, d := range observationShape {
		if d <= 0 {
			return nil, fmt.Errorf("%w: observation shape %v has a non-positive dimension", ErrShapeMismatch, observationShape)
		}
		dim *= d
	}
	return &StackedObservation{
		dim:     dim,
		nFrames: nFrames,
		stack:   make([]float32, dim*nFrames),
	}, nil
}

// Append pushes the newest observation, evicting the oldest slot.
func (s *StackedObservation) Append(observation []float32) error {
	if len(observation) != s.dim {
		return fmt.Errorf("%w: observation has %d elements, want %d", ErrShapeMismatch, len(observation), s.dim)
	}
	copy(s.stack, s.stack[s.dim:])
	copy(s.stack[len(s.stack)-s.dim:], observation)
	return nil
}

// Eval returns a copy of the current stack, oldest slot first.
func (s *StackedObservation) Eval() []float32 {
	out := make([]float32, len(s.stack))
	copy(out, s.stack)
	return out
}

// Clear resets every slot to zero.
func (s *StackedObservation) Clear() {
	for i := range s.stack {
		s.stack[i] = 0
	}
}
