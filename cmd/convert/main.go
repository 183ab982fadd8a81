package main

import (
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/io"
)

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a matrix between .npy and .csv",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}

			matrix, err := io.FiletoMat64(args[0])
			if err != nil {
				return err
			}
			log.Info().Str("path", args[0]).Msg("Reading matrix complete")

			if err := io.Mat64toFile(args[1], matrix); err != nil {
				return err
			}
			log.Info().Str("path", args[1]).Msg("Writing matrix complete")
			return nil
		},
	}

	cli.AddConfigFlags(cmd.Flags())
	return cmd
}
