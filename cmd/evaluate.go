package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/acrobot-a2c/agent"
	"github.com/samuelfneumann/acrobot-a2c/experiment"
	"github.com/samuelfneumann/acrobot-a2c/experiment/checkpointer"
	ts "github.com/samuelfneumann/acrobot-a2c/timestep"
	"github.com/samuelfneumann/acrobot-a2c/utils/progressbar"
	"github.com/spf13/cobra"
)

var (
	framesDir string
	frameSize int
)

func EvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [weights]",
		Short: "Evaluate an agent whose weights were saved during training",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.Experiment
			c.SavePath = ""
			trainer, err := c.CreateTrainer(config.Seed)
			if err != nil {
				return err
			}
			defer trainer.Close()

			w, ok := trainer.Agent().(agent.Weighted)
			if !ok {
				return fmt.Errorf("agent %T has no weights to load",
					trainer.Agent())
			}
			if err := checkpointer.Load(args[0], w); err != nil {
				return err
			}

			if framesDir != "" {
				if err := record(trainer, c.StepLimit); err != nil {
					return err
				}
			}

			if c.EvalEpisodes == 0 {
				return nil
			}
			bar := progressbar.NewManualProgressBar(os.Stdout, 40,
				c.EvalEpisodes)
			trainer.Listen(func(r experiment.Report) {
				bar.Increment()
				bar.SetMessage("episode %v | return %.0f | mean %.2f",
					r.Index, r.Return, r.Mean)
				bar.Display()
			})

			mean, err := trainer.Evaluate(c.EvalEpisodes)
			bar.Close()
			if err != nil {
				return err
			}
			log.Printf("mean return over %v evaluation episodes: %.2f",
				c.EvalEpisodes, mean)
			return nil
		},
	}
	cmd.Flags().StringVar(&framesDir, "frames", "", "Directory to save the frames of one episode in")
	cmd.Flags().IntVar(&frameSize, "frame-size", 256, "Width and height of frames in pixels")

	return cmd
}

// renderer is an environment which can save an image of its state
type renderer interface {
	SavePNG(path string, size int) error
}

// frames saves an image of the environment each timestep
type frames struct {
	env renderer
	dir string
	err error
}

func (f *frames) Track(step ts.TimeStep) {
	if f.err != nil {
		return
	}
	filename := filepath.Join(f.dir, fmt.Sprintf("frame-%04d.png",
		step.Number))
	f.err = f.env.SavePNG(filename, frameSize)
}

func (f *frames) Save() error {
	return f.err
}

// record runs a single idle episode and saves its frames in framesDir
func record(trainer *experiment.Trainer, stepLimit int) error {
	r, ok := trainer.Env().(renderer)
	if !ok {
		return fmt.Errorf("environment %T cannot be rendered", trainer.Env())
	}
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return fmt.Errorf("could not create frames directory: %v", err)
	}

	f := &frames{env: r, dir: framesDir}
	episode, err := experiment.RunEpisode(trainer.Env(), trainer.Agent(),
		agent.Idle, stepLimit, f)
	if err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("could not save frame: %v", err)
	}

	log.Printf("saved %v frames in %v: return %.0f (%v)", episode.Steps+1,
		framesDir, episode.Return, episode.End)
	return nil
}
