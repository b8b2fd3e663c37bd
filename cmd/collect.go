package cmd

import (
	"context"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zeu5/rl-dataset/dataset"
	"github.com/zeu5/rl-dataset/envs/cartpole"
	"github.com/zeu5/rl-dataset/online"
	"github.com/zeu5/rl-dataset/util"
)

func CollectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect cartpole episodes with a random policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

			doneCh := make(chan struct{}) // channel for done signal from application

			ctx, cancel := context.WithCancel(context.Background())
			go func() { // start a go-routine
				select { // can wait on multiple channels
				case <-sigCh:
				case <-doneCh:
				}
				cancel()
			}()

			// Distinct streams for env, policy and buffer when seeded.
			var envSeed, policySeed, bufferSeed uint64
			if flags.Seed != 0 {
				envSeed, policySeed, bufferSeed = flags.Seed, flags.Seed+1, flags.Seed+2
			}

			logger := newLogger()
			env := cartpole.New(envSeed)
			buffer, err := online.NewReplayBuffer(online.Config{
				MaxLen:  flags.MaxLen,
				Schema:  env.Schema(),
				NFrames: flags.NFrames,
				NSteps:  flags.NSteps,
				Gamma:   flags.Gamma,
				Seed:    bufferSeed,
			})
			if err != nil {
				return err
			}
			policy := online.NewRandomDiscretePolicy(env.Schema().ActionSize, policySeed)
			collector := online.NewCollector("cartpole", env, policy, buffer, logger)

			printer := util.NewProgressPrinter(100 * time.Millisecond)
			collector.Writer = printer.NewLine()
			printer.Start(ctx)

			result := collector.Run(ctx, flags.Episodes, flags.Horizon)
			printer.Stop()
			close(doneCh)
			if result.IsError() {
				return result.Error
			}

			ds, err := dataset.NewDatasetFromEpisodes(env.Schema(), buffer.Episodes())
			if err != nil {
				return err
			}
			runPath := path.Join(flags.SavePath, uuid.New().String())
			datasetPath := path.Join(runPath, "dataset.json")
			if err := ds.Dump(datasetPath); err != nil {
				return err
			}
			if err := util.SaveJson(path.Join(runPath, "episodes.json"), map[string]interface{}{
				"returns": collector.Stats.Returns(),
				"lengths": collector.Stats.Lengths(),
			}); err != nil {
				return err
			}

			logger.Info().
				Int("episodes", result.CompletedEpisodes).
				Int("error_episodes", result.ErrorEpisodes).
				Int("transitions", ds.TransitionCount()).
				Float64("mean_return", collector.Stats.MeanReturn()).
				Str("path", datasetPath).
				Msg("dataset saved")
			return nil
		},
	}

	return cmd
}
