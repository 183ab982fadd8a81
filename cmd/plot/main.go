package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/io"
	"github.com/KyungWonPark/Diagonalization/internal/plot"
)

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		input string
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a list of eigenvalues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}

			k, err := plot.ParseKind(kind)
			if err != nil {
				return err
			}
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file %s does not exist", input)
			}

			values, err := io.FiletoValues(input)
			if err != nil {
				return err
			}
			chart, err := plot.Render(values, k)
			if err != nil {
				return err
			}

			out := plot.OutputName(input, k)
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := plot.WritePNG(f, chart); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			log.Info().Int("values", len(values)).Str("path", out).Msg("Plot saved")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	fs := cmd.Flags()
	cli.AddConfigFlags(fs)
	fs.StringVarP(&input, "input-file", "i", "", "file with one eigenvalue per line")
	fs.StringVarP(&kind, "plot-type", "p", string(plot.Violin), "plot kind (violin, hist, dens, box)")
	_ = cmd.MarkFlagRequired("input-file")
	return cmd
}
