package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/zeu5/rl-dataset/dataset"
	"github.com/zeu5/rl-dataset/util"
)

func PlotCommand() *cobra.Command {
	var smoothWindow int
	cmd := &cobra.Command{
		Use:   "plot <dataset.json>",
		Args:  cobra.ExactArgs(1),
		Short: "Plot per-episode returns and lengths of a saved dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.LoadDataset(args[0])
			if err != nil {
				return err
			}
			episodes := ds.Episodes()
			if len(episodes) == 0 {
				return fmt.Errorf("dataset has no episodes to plot")
			}
			returns := make([]float64, len(episodes))
			lengths := make([]float64, len(episodes))
			for i, ep := range episodes {
				returns[i] = ep.ComputeReturn()
				lengths[i] = float64(ep.Steps())
			}

			plotDir := path.Dir(args[0])
			if err := plotSeries(path.Join(plotDir, "returns.png"), "Episode returns", "Return", returns, smoothWindow); err != nil {
				return err
			}
			if err := plotSeries(path.Join(plotDir, "lengths.png"), "Episode lengths", "Steps", lengths, smoothWindow); err != nil {
				return err
			}
			fmt.Printf("Plots saved to %s\n", plotDir)
			return nil
		},
	}
	cmd.Flags().IntVar(&smoothWindow, "smooth-window", 10, "Moving average window for the smoothed curve")

	return cmd
}

func plotSeries(file string, title string, yLabel string, series []float64, window int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = yLabel

	points := make(plotter.XYs, len(series))
	for i, v := range series {
		points[i] = plotter.XY{
			X: float64(i),
			Y: v,
		}
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("raw", line)

	if window > 1 {
		smoothed := movingAverage(series, window)
		smoothPoints := make(plotter.XYs, len(smoothed))
		for i, v := range smoothed {
			smoothPoints[i] = plotter.XY{
				X: float64(i),
				Y: v,
			}
		}
		smoothLine, err := plotter.NewLine(smoothPoints)
		if err != nil {
			return err
		}
		smoothLine.Color = plotutil.Color(1)
		p.Add(smoothLine)
		p.Legend.Add("smoothed", smoothLine)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, file)
}

// movingAverage averages the trailing window at each point, shrinking
// the window near the start of the series.
func movingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		w := util.MinInt(i+1, window)
		sum := 0.0
		for j := i - w + 1; j <= i; j++ {
			sum += series[j]
		}
		out[i] = sum / float64(w)
	}
	return out
}
