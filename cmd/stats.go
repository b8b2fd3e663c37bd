package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/zeu5/rl-dataset/dataset"
	"github.com/zeu5/rl-dataset/util"
)

func StatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <dataset.json>",
		Args:  cobra.ExactArgs(1),
		Short: "Summarize a saved dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.LoadDataset(args[0])
			if err != nil {
				return err
			}
			stats := ds.ComputeStats()

			fmt.Printf("Episodes: %d, Transitions: %d\n", ds.Len(), ds.TransitionCount())
			fmt.Printf("Observation shape: %v, Action size: %d, Discrete: %v\n",
				ds.ObservationShape(), ds.ActionSize(), ds.DiscreteAction())
			fmt.Printf("Return: mean=%.4f std=%.4f min=%.4f max=%.4f\n",
				stats.Return.Mean, stats.Return.Std, stats.Return.Min, stats.Return.Max)
			fmt.Printf("Reward: mean=%.4f std=%.4f min=%.4f max=%.4f\n",
				stats.Reward.Mean, stats.Reward.Std, stats.Reward.Min, stats.Reward.Max)
			if ds.DiscreteAction() {
				for action, count := range stats.ActionHistogram {
					fmt.Printf("Action %d: %d\n", action, count)
				}
			}

			statsPath := path.Join(path.Dir(args[0]), "stats.json")
			if err := util.SaveJson(statsPath, stats); err != nil {
				return err
			}
			fmt.Printf("Stats saved to %s\n", statsPath)
			return nil
		},
	}

	return cmd
}
