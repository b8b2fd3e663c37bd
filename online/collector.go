package online

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Collector runs a policy against an environment and feeds every step
// into the replay buffer, closing each run at the environment terminal
// or at the horizon, whichever comes first. Writer receives one
// progress line per episode; Stats accumulates per-episode results.
type Collector struct {
	Name   string
	Env    Environment
	Policy Policy
	Buffer *ReplayBuffer

	Logger zerolog.Logger
	Writer io.Writer
	Stats  *EpisodeStats
}

func NewCollector(name string, env Environment, policy Policy, buffer *ReplayBuffer, logger zerolog.Logger) *Collector {
	return &Collector{
		Name:   name,
		Env:    env,
		Policy: policy,
		Buffer: buffer,
		Logger: logger,
		Writer: io.Discard,
		Stats:  NewEpisodeStats(),
	}
}

type CollectResult struct {
	CompletedEpisodes int
	ErrorEpisodes     int
	TotalSteps        int

	Error error
}

func (r *CollectResult) IsError() bool {
	return r.Error != nil
}

// Run collects the given number of episodes, each capped at horizon
// environment steps. Episode errors are logged and skipped; a
// cancelled context stops the run with the context error recorded.
func (c *Collector) Run(ctx context.Context, episodes int, horizon int) *CollectResult {
	result := &CollectResult{}
	if horizon < 1 {
		result.Error = fmt.Errorf("horizon must be at least 1, got %d", horizon)
		return result
	}

EpisodeLoop:
	for episode := 0; episode < episodes; episode++ {
		select {
		case <-ctx.Done():
			result.Error = ctx.Err()
			break EpisodeLoop
		default:
		}

		fmt.Fprintf(
			c.Writer,
			"Collector: %s, Episode %d/%d, Steps: %d, Buffer: %d, Errors: %d\n",
			c.Name, episode, episodes, result.TotalSteps, c.Buffer.Len(), result.ErrorEpisodes,
		)

		steps, episodeReturn, err := c.runEpisode(ctx, horizon)
		if err != nil {
			// Steps of the broken run must not leak into the next one.
			c.Buffer.Discard()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Error = err
				break EpisodeLoop
			}
			result.ErrorEpisodes++
			c.Logger.Error().Err(err).Int("episode", episode).Msg("episode failed")
			continue
		}

		result.CompletedEpisodes++
		result.TotalSteps += steps
		c.Stats.Record(steps, episodeReturn)
		c.Logger.Debug().
			Int("episode", episode).
			Int("steps", steps).
			Float64("return", episodeReturn).
			Int("buffer", c.Buffer.Len()).
			Msg("episode collected")
	}
	if result.Error != nil {
		fmt.Fprintf(c.Writer, "Collector: %s, Error: %v\n", c.Name, result.Error)
	}
	return result
}

// runEpisode drives one reset-to-terminal run. The reward appended
// with each observation is the one received arriving at it, so the
// first step carries a zero placeholder. The final observation closes
// the run with the terminal flag set, reusing the last action; hitting
// the horizon forces the cut the same way.
func (c *Collector) runEpisode(ctx context.Context, horizon int) (int, float64, error) {
	observation, err := c.Env.Reset()
	if err != nil {
		return 0, 0, fmt.Errorf("reset: %w", err)
	}

	var action []float32
	reward := float32(0.0)
	episodeReturn := 0.0
	steps := 0
	for step := 0; step < horizon; step++ {
		select {
		case <-ctx.Done():
			return steps, episodeReturn, ctx.Err()
		default:
		}

		action = c.Policy.SelectAction(observation)
		if err := c.Buffer.Append(observation, action, reward, false); err != nil {
			return steps, episodeReturn, err
		}
		res, err := c.Env.Step(action)
		if err != nil {
			return steps, episodeReturn, fmt.Errorf("step %d: %w", step, err)
		}
		observation = res.Observation
		reward = res.Reward
		episodeReturn += float64(reward)
		steps++
		if res.Terminal {
			break
		}
	}

	if err := c.Buffer.Append(observation, action, reward, true); err != nil {
		return steps, episodeReturn, err
	}
	return steps + 1, episodeReturn, nil
}
