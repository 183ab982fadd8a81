package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/io"
	"github.com/KyungWonPark/Diagonalization/internal/store"
)

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		dsn string
		out string
	)

	cmd := &cobra.Command{
		Use:   "query <pk>",
		Short: "Save one matrix of the database as a .npy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("pk must be an integer: %q", args[0])
			}

			cfg, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}
			cli.Override(cmd.Flags(), "dsn", func() { cfg.Database.DSN = dsn })

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.Database.DSN, cfg.Database.QueryTimeout)
			if err != nil {
				return err
			}
			defer st.Close()

			matrix, err := st.Get(ctx, pk)
			if err != nil {
				return err
			}

			if out == "" {
				out = strconv.Itoa(pk) + ".npy"
			}
			if err := io.Mat64toNpy(out, matrix); err != nil {
				return err
			}
			log.Info().Int("pk", pk).Str("path", out).Msg("Matrix saved")
			return nil
		},
	}

	fs := cmd.Flags()
	cli.AddConfigFlags(fs)
	fs.StringVar(&dsn, "dsn", "", "database connection string")
	fs.StringVarP(&out, "output", "o", "", "output file (default <pk>.npy)")
	return cmd
}
