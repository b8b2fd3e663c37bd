package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flags *Flags = DefaultFlags()

	savePath string
	debug    bool

	episodes int
	horizon  int
	maxLen   int
	seed     uint64

	nFrames int
	nSteps  int
	gamma   float64
)

func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&savePath, "save-path", flags.SavePath, "Path to save results")
	cmd.PersistentFlags().BoolVar(&debug, "debug", flags.Debug, "Enable debug logging")

	cmd.PersistentFlags().IntVar(&episodes, "episodes", flags.Episodes, "Number of episodes to collect")
	cmd.PersistentFlags().IntVar(&horizon, "horizon", flags.Horizon, "Maximum steps per episode")
	cmd.PersistentFlags().IntVar(&maxLen, "max-len", flags.MaxLen, "Replay buffer capacity in transitions")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", flags.Seed, "Random seed, 0 for wall clock")

	cmd.PersistentFlags().IntVar(&nFrames, "n-frames", flags.NFrames, "Frames stacked per observation")
	cmd.PersistentFlags().IntVar(&nSteps, "n-steps", flags.NSteps, "Steps aggregated into sampled returns")
	cmd.PersistentFlags().Float64Var(&gamma, "gamma", flags.Gamma, "Discount factor for aggregated returns")

	// Bind flags to viper for environment variable support
	viper.BindPFlags(cmd.PersistentFlags())
	viper.SetEnvPrefix("RLDS")
	viper.AutomaticEnv()
}

func UpdateFlags() {
	flags.SavePath = savePath
	flags.Debug = debug

	flags.Episodes = episodes
	flags.Horizon = horizon
	flags.MaxLen = maxLen
	flags.Seed = seed

	flags.NFrames = nFrames
	flags.NSteps = nSteps
	flags.Gamma = gamma
}
