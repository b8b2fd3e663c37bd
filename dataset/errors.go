package dataset

import "errors"

var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrEmptyEpisode    = errors.New("episode needs at least 2 recorded steps")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrCorruptDataset  = errors.New("corrupt dataset")
	ErrNoTransitions   = errors.New("no transitions to sample")
)
