package online

import (
	"sync"

	"github.com/zeu5/rl-dataset/util"
)

// EpisodeStats accumulates the per-episode return and length history
// of a collection run, for reporting and plotting afterwards.
type EpisodeStats struct {
	mtx     *sync.Mutex
	returns []float64
	lengths []int
}

func NewEpisodeStats() *EpisodeStats {
	return &EpisodeStats{
		mtx:     &sync.Mutex{},
		returns: make([]float64, 0),
		lengths: make([]int, 0),
	}
}

func (s *EpisodeStats) Record(length int, episodeReturn float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.lengths = append(s.lengths, length)
	s.returns = append(s.returns, episodeReturn)
}

func (s *EpisodeStats) Episodes() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.returns)
}

func (s *EpisodeStats) Returns() []float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return util.CopyFloat64Slice(s.returns)
}

func (s *EpisodeStats) Lengths() []int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return util.CopyIntSlice(s.lengths)
}

func (s *EpisodeStats) MeanReturn() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if len(s.returns) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, r := range s.returns {
		sum += r
	}
	return sum / float64(len(s.returns))
}
