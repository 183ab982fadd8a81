package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gonum/matrix/mat64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/calc"
	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/io"
	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
	"github.com/KyungWonPark/Diagonalization/internal/metrics"
	"github.com/KyungWonPark/Diagonalization/internal/store"
)

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		dsn     string
		workers int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Diagonalize every matrix of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			cli.Override(fs, "dsn", func() { cfg.Database.DSN = dsn })
			cli.Override(fs, "workers", func() { cfg.Batch.Workers = workers })
			cli.Override(fs, "output", func() { cfg.Batch.OutputDir = output })
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.Database.DSN, cfg.Database.QueryTimeout)
			if err != nil {
				return err
			}
			defer st.Close()

			keys, err := st.Keys(ctx)
			if err != nil {
				return err
			}

			m := metrics.New(prometheus.NewRegistry())
			options := []calc.RunOption{calc.WithMetrics(m)}
			c, err := cli.Cache(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			if c != nil {
				defer c.Close()
				options = append(options, calc.WithCache(c))
			}

			pl := calc.Init(cfg.Batch.Workers, log)
			b := pl.Run(ctx, st, keys, cfg.Jacobi, options...)

			for _, o := range b.Outcomes {
				if o.Err != nil {
					log.Error().Err(o.Err).Int("pk", o.PK).Msg("Diagonalization failed")
					continue
				}
				if err := save(cfg.Batch.OutputDir, o.PK, o.Result); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "batch %s: %d matrices, %d converged, %d cached, %d failed\n",
				b.ID, len(b.Outcomes), b.Converged, b.Cached, b.Failed)
			if b.Failed > 0 {
				return fmt.Errorf("%d of %d matrices failed", b.Failed, len(b.Outcomes))
			}
			return nil
		},
	}

	fs := cmd.Flags()
	cli.AddConfigFlags(fs)
	fs.StringVar(&dsn, "dsn", "", "database connection string")
	fs.IntVar(&workers, "workers", 4, "matrices diagonalized concurrently (0 uses every CPU)")
	fs.StringVar(&output, "output", "output", "directory receiving <pk>/eigVal.npy and <pk>/eigVec.npy")
	return cmd
}

func save(dir string, pk int, res jacobi.Result) error {
	if len(res.Values) == 0 {
		return nil
	}

	dest := filepath.Join(dir, strconv.Itoa(pk))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	if err := io.Mat64toNpy(filepath.Join(dest, "eigVal.npy"), mat64.NewDense(len(res.Values), 1, res.Values)); err != nil {
		return err
	}
	return io.Mat64toNpy(filepath.Join(dest, "eigVec.npy"), res.Vectors)
}
