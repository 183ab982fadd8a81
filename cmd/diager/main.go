package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/io"
	"github.com/KyungWonPark/Diagonalization/internal/solver"
)

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var vectorsOut string

	cmd := &cobra.Command{
		Use:   "diager <file.npy>",
		Short: "Diagonalize a matrix with the library eigen-solver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}

			path := args[0]
			matrix, err := io.FiletoMat64(path)
			if err != nil {
				return err
			}

			start := time.Now()
			values, vectors, err := solver.Eigen(matrix)
			if err != nil {
				return err
			}
			log.Info().Dur("elapsed", time.Since(start)).Int("n", len(values)).Msg("Diagonalization complete")

			if err := io.ValuestoFile(io.ValuesFileName(path), values); err != nil {
				return err
			}
			if vectorsOut != "" {
				if err := io.Mat64toFile(vectorsOut, vectors); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), io.Stem(path))
			return nil
		},
	}

	cli.AddConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&vectorsOut, "vectors-out", "", "also write eigenvectors (columns) to this file")
	return cmd
}
