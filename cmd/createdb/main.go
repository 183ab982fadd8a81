package main

import (
	"math/rand"

	"github.com/gonum/matrix/mat64"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/calc"
	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/gen"
	"github.com/KyungWonPark/Diagonalization/internal/store"
)

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		dsn       string
		count     int
		dim       int
		seed      int64
		kind      string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "createdb",
		Short: "Fill the matrix database with seeded random matrices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			cli.Override(fs, "dsn", func() { cfg.Database.DSN = dsn })
			cli.Override(fs, "nb_mats", func() { cfg.Generator.Count = count })
			cli.Override(fs, "dim_mats", func() { cfg.Generator.Dim = dim })
			cli.Override(fs, "seed", func() { cfg.Generator.Seed = seed })
			cli.Override(fs, "kind", func() { cfg.Generator.Kind = kind })
			cli.Override(fs, "threshold", func() { cfg.Generator.Threshold = threshold })
			if err := cfg.Validate(); err != nil {
				return err
			}

			k, err := gen.ParseKind(cfg.Generator.Kind)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.Database.DSN, cfg.Database.QueryTimeout)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.CreateSchema(ctx); err != nil {
				return err
			}

			g := gen.New(rand.New(rand.NewSource(cfg.Generator.Seed)), calc.Init(cfg.Batch.Workers, log))
			err = st.Populate(ctx, cfg.Generator.Count, func(pk int) (*mat64.Dense, error) {
				log.Debug().Int("pk", pk).Msg("Generating matrix")
				return g.Matrix(k, cfg.Generator.Dim, cfg.Generator.Threshold)
			})
			if err != nil {
				return err
			}

			log.Info().
				Int("matrices", cfg.Generator.Count).
				Int("dim", cfg.Generator.Dim).
				Str("kind", string(k)).
				Int64("seed", cfg.Generator.Seed).
				Msg("Database created")
			return nil
		},
	}

	fs := cmd.Flags()
	cli.AddConfigFlags(fs)
	fs.StringVar(&dsn, "dsn", "", "database connection string")
	fs.IntVar(&count, "nb_mats", 100, "number of matrices")
	fs.IntVar(&dim, "dim_mats", 50, "dimension of each square matrix")
	fs.Int64Var(&seed, "seed", 0, "random seed")
	fs.StringVar(&kind, "kind", string(gen.Symmetric), "matrix kind (uniform, symmetric, laplacian, diagonal)")
	fs.Float64Var(&threshold, "threshold", 0.5, "edge threshold for laplacian matrices")
	return cmd
}
