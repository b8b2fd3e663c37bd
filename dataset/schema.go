package dataset

import "fmt"

// Schema declares the shape of the data recorded at every step: the
// observation tensor shape, the size of the action space and whether
// actions are discrete indices or continuous vectors. Episodes of one
// Dataset or ReplayBuffer all share a single Schema.
type Schema struct {
	ObservationShape []int `json:"observation_shape"`
	ActionSize       int   `json:"action_size"`
	Discrete         bool  `json:"discrete_action"`
}

// DiscreteSchema declares an action space of numActions integer indices.
func DiscreteSchema(observationShape []int, numActions int) Schema {
	return Schema{
		ObservationShape: observationShape,
		ActionSize:       numActions,
		Discrete:         true,
	}
}

// BoxSchema declares a continuous action space of actionDim dimensions.
func BoxSchema(observationShape []int, actionDim int) Schema {
	return Schema{
		ObservationShape: observationShape,
		ActionSize:       actionDim,
		Discrete:         false,
	}
}

func (s Schema) Validate() error {
	if len(s.ObservationShape) == 0 {
		return fmt.Errorf("%w: empty observation shape", ErrShapeMismatch)
	}
	for _, d := range s.ObservationShape {
		if d <= 0 {
			return fmt.Errorf("%w: observation shape %v has a non-positive dimension", ErrShapeMismatch, s.ObservationShape)
		}
	}
	if s.ActionSize <= 0 {
		return fmt.Errorf("%w: action size must be positive, got %d", ErrShapeMismatch, s.ActionSize)
	}
	return nil
}

// FlatDim is the number of elements in one observation row.
func (s Schema) FlatDim() int {
	dim := 1
	for _, d := range s.ObservationShape {
		dim *= d
	}
	return dim
}

// ActionDim is the width of one action row: 1 for discrete indices,
// ActionSize for continuous vectors.
func (s Schema) ActionDim() int {
	if s.Discrete {
		return 1
	}
	return s.ActionSize
}

func (s Schema) Equal(other Schema) bool {
	if s.ActionSize != other.ActionSize || s.Discrete != other.Discrete {
		return false
	}
	if len(s.ObservationShape) != len(other.ObservationShape) {
		return false
	}
	for i, d := range s.ObservationShape {
		if other.ObservationShape[i] != d {
			return false
		}
	}
	return true
}

// stackable reports whether frame stacking applies to this schema.
// Only image-rank observations are stacked along the channel axis.
func (s Schema) stackable() bool {
	return len(s.ObservationShape) >= 3
}

// CheckObservation validates one observation row against the schema.
func (s Schema) CheckObservation(row []float32) error {
	if len(row) != s.FlatDim() {
		return fmt.Errorf("%w: observation has %d elements, shape %v needs %d", ErrShapeMismatch, len(row), s.ObservationShape, s.FlatDim())
	}
	return nil
}

// CheckAction validates one action row against the schema.
func (s Schema) CheckAction(row []float32) error {
	if len(row) != s.ActionDim() {
		return fmt.Errorf("%w: action has %d elements, want %d", ErrShapeMismatch, len(row), s.ActionDim())
	}
	if s.Discrete {
		idx := int(row[0])
		if float32(idx) != row[0] || idx < 0 || idx >= s.ActionSize {
			return fmt.Errorf("%w: discrete action %v outside [0, %d)", ErrShapeMismatch, row[0], s.ActionSize)
		}
	}
	return nil
}

// DiscreteActionRows converts integer action indices to width-1 action rows.
func DiscreteActionRows(indices []int) [][]float32 {
	rows := make([][]float32, len(indices))
	for i, idx := range indices {
		rows[i] = []float32{float32(idx)}
	}
	return rows
}
