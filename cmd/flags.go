package cmd

import (
	"path"

	"github.com/zeu5/rl-dataset/util"
)

type Flags struct {
	SavePath string
	Debug    bool
	CollectFlags
	BatchFlags
}

type CollectFlags struct {
	Episodes int
	Horizon  int
	MaxLen   int
	Seed     uint64
}

type BatchFlags struct {
	NFrames int
	NSteps  int
	Gamma   float64
}

func DefaultFlags() *Flags {
	return &Flags{
		SavePath: "results",
		Debug:    false,
		CollectFlags: CollectFlags{
			Episodes: 100,
			Horizon:  500,
			MaxLen:   100000,
			Seed:     0,
		},
		BatchFlags: BatchFlags{
			NFrames: 1,
			NSteps:  1,
			Gamma:   0.99,
		},
	}
}

func (f *Flags) Record() {
	util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
