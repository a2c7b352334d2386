package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	"github.com/samuelfneumann/acrobot-a2c/experiment"
	"github.com/samuelfneumann/acrobot-a2c/experiment/checkpointer"
	"github.com/samuelfneumann/acrobot-a2c/experiment/plots"
	"github.com/samuelfneumann/acrobot-a2c/utils/progressbar"
	"github.com/spf13/cobra"
)

// Files saved in the save path after training
const (
	WeightsFile = "weights.bin"
	PlotFile    = "returns.png"
)

func TrainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train an agent until it solves the task, then evaluate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := Record(); err != nil {
				return err
			}

			c := config.Experiment
			trainer, err := c.CreateTrainer(config.Seed)
			if err != nil {
				return err
			}
			defer trainer.Close()

			bar := progressbar.NewManualProgressBar(os.Stdout, 40,
				c.MaxEpisodes)
			trainer.Listen(func(r experiment.Report) {
				if r.Mode != agent.Train {
					return
				}
				bar.Increment()
				bar.SetMessage("episode %v | steps %v | return %.0f | "+
					"mean of last %v: %.2f", r.Index, r.Steps, r.Return,
					c.Window, r.Mean)
				bar.Display()
			})

			err = trainer.Train()
			bar.Close()
			if errors.Is(err, experiment.ErrNotSolved) {
				log.Printf("warning: %v", err)
			} else if err != nil {
				return err
			} else {
				log.Printf("solved after %v episodes: mean return %.2f",
					len(trainer.Returns()), trainer.MeanReturn())
			}

			if err := save(trainer, c); err != nil {
				return err
			}

			if c.EvalEpisodes == 0 {
				return nil
			}
			mean, err := trainer.Evaluate(c.EvalEpisodes)
			if err != nil {
				return err
			}
			log.Printf("mean return over %v evaluation episodes: %.2f",
				c.EvalEpisodes, mean)
			return nil
		},
	}
}

// save saves the tracked data, the final weights, and a plot of the
// returns seen during training
func save(trainer *experiment.Trainer, c experiment.Config) error {
	if c.SavePath == "" {
		return nil
	}

	if err := trainer.Save(); err != nil {
		return fmt.Errorf("could not save data: %v", err)
	}

	if w, ok := trainer.Agent().(agent.Weighted); ok {
		filename := filepath.Join(c.SavePath, WeightsFile)
		if err := checkpointer.Save(filename, w); err != nil {
			return fmt.Errorf("could not save weights: %v", err)
		}
		log.Printf("weights saved to %v", filename)
	}

	if len(trainer.Returns()) > 0 {
		filename := filepath.Join(c.SavePath, PlotFile)
		if err := plots.ReturnCurve(trainer.Returns(), c.Window, c.Threshold,
			filename); err != nil {
			return err
		}
		log.Printf("returns plotted in %v", filename)
	}
	return nil
}
