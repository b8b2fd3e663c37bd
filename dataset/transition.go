package dataset

// Transition is one step of an episode together with its chain links.
// It is an index into the owning episode's backing arrays: the current
// step lives at index, the next step at index+1. Transitions are only
// created by their episode and share its lifetime.
type Transition struct {
	episode *Episode
	index   int
}

func (t *Transition) Episode() *Episode {
	return t.episode
}

// Index is the position of this transition within its episode.
func (t *Transition) Index() int {
	return t.index
}

func (t *Transition) ObservationShape() []int {
	return t.episode.schema.ObservationShape
}

func (t *Transition) ActionSize() int {
	return t.episode.schema.ActionSize
}

func (t *Transition) Observation() []float32 {
	return t.episode.observations[t.index]
}

func (t *Transition) Action() []float32 {
	return t.episode.actions[t.index]
}

// ActionIndex is the discrete action at the current step. Only
// meaningful for discrete schemas.
func (t *Transition) ActionIndex() int {
	return int(t.episode.actions[t.index][0])
}

func (t *Transition) Reward() float32 {
	return t.episode.rewards[t.index]
}

func (t *Transition) NextObservation() []float32 {
	return t.episode.observations[t.index+1]
}

func (t *Transition) NextAction() []float32 {
	return t.episode.actions[t.index+1]
}

func (t *Transition) NextActionIndex() int {
	return int(t.episode.actions[t.index+1][0])
}

func (t *Transition) NextReward() float32 {
	return t.episode.rewards[t.index+1]
}

// Terminal is 1 for the last transition of the episode, 0 otherwise.
func (t *Transition) Terminal() float32 {
	if t.index == t.episode.Size()-1 {
		return 1.0
	}
	return 0.0
}

// Next returns the following transition of the chain, or false at the
// terminal tail.
func (t *Transition) Next() (*Transition, bool) {
	if t.index+1 >= t.episode.Size() {
		return nil, false
	}
	return t.episode.Transitions()[t.index+1], true
}

// Prev returns the preceding transition of the chain, or false at the
// episode head.
func (t *Transition) Prev() (*Transition, bool) {
	if t.index == 0 {
		return nil, false
	}
	return t.episode.Transitions()[t.index-1], true
}
