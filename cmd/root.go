// Package cmd implements the command line interface for training and
// evaluating A2C agents on Acrobot
package cmd

import "github.com/spf13/cobra"

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "acrobot-a2c",
		Short:        "Train and evaluate A2C agents on Acrobot",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return UpdateFlags(cmd)
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		TrainCommand(),
		EvaluateCommand(),
	)

	return cmd
}
