package main

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/calc"
	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/cluster"
	"github.com/KyungWonPark/Diagonalization/internal/io"
	"github.com/KyungWonPark/Diagonalization/internal/jacobi"
	"github.com/KyungWonPark/Diagonalization/internal/solver"
)

const verifyPrecision = 1e-8

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		tol        float64
		maxIter    int
		valuesOut  string
		vectorsOut string
		verify     bool
		spectral   bool
	)

	cmd := &cobra.Command{
		Use:   "jacobi <file.npy>",
		Short: "Diagonalize a symmetric matrix with the Jacobi eigenvalue algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}

			opts := cfg.Jacobi
			cli.Override(cmd.Flags(), "tol", func() { opts.Tol = tol })
			cli.Override(cmd.Flags(), "max-iterations", func() { opts.MaxIterations = maxIter })
			if err := opts.Validate(); err != nil {
				return err
			}

			matrix, err := io.FiletoMat64(args[0])
			if err != nil {
				return err
			}
			n, _ := matrix.Dims()
			log.Info().Str("path", args[0]).Int("n", n).Msg("Reading matrix complete")

			res, err := jacobi.Diagonalize(matrix, opts)
			if err != nil {
				return err
			}
			log.Info().Int("iterations", res.Iterations).Float64("offdiag", res.OffDiag).Msg("Diagonalization complete")
			if !res.Converged {
				log.Warn().Int("max_iterations", opts.MaxIterations).Float64("offdiag", res.OffDiag).
					Msg("Iteration cap reached before the off-diagonal fell below tolerance")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Eigenvalues: %v\n", res.Values)

			if valuesOut != "" && len(res.Values) > 0 {
				if err := io.Mat64toFile(valuesOut, mat64.NewDense(len(res.Values), 1, res.Values)); err != nil {
					return err
				}
				log.Info().Str("path", valuesOut).Msg("Wrote eigenvalues")
			}
			if vectorsOut != "" && len(res.Values) > 0 {
				if err := io.Mat64toFile(vectorsOut, res.Vectors); err != nil {
					return err
				}
				log.Info().Str("path", vectorsOut).Msg("Wrote eigenvectors")
			}

			if spectral {
				printSpectral(cmd, res)
			}
			if verify {
				return check(cmd, matrix, res)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	cli.AddConfigFlags(fs)
	fs.Float64Var(&tol, "tol", jacobi.DefaultOptions().Tol, "stop once every off-diagonal magnitude is below this")
	fs.IntVar(&maxIter, "max-iterations", jacobi.DefaultOptions().MaxIterations, "maximum number of rotations")
	fs.StringVar(&valuesOut, "values-out", "", "write eigenvalues to this .npy or .csv file")
	fs.StringVar(&vectorsOut, "vectors-out", "", "write eigenvectors (columns) to this .npy or .csv file")
	fs.BoolVar(&verify, "verify", false, "check the result against the library eigen-solver")
	fs.BoolVar(&spectral, "spectral", false, "treat the input as a graph Laplacian and print its components and Fiedler split")
	return cmd
}

func check(cmd *cobra.Command, matrix *mat64.Dense, res jacobi.Result) error {
	out := cmd.OutOrStdout()
	if len(res.Values) == 0 {
		fmt.Fprintln(out, "Nothing to verify for an empty matrix")
		return nil
	}

	orthogonal := calc.CheckOrthogonal(res.Vectors, verifyPrecision)
	quality := calc.CheckEigenQuality(matrix, res.Values, res.Vectors, verifyPrecision)
	fmt.Fprintf(out, "Orthogonal eigenvectors: %t\n", orthogonal)
	fmt.Fprintf(out, "Eigen decomposition reconstructs the matrix: %t\n", quality)

	libValues, _, err := solver.Eigen(matrix)
	if err != nil {
		return err
	}
	diff := solver.Compare(res.Values, libValues)
	fmt.Fprintf(out, "Max difference from library eigenvalues: %g\n", diff)

	if !orthogonal || !quality || diff > verifyPrecision {
		return fmt.Errorf("verification failed")
	}
	return nil
}

func printSpectral(cmd *cobra.Command, res jacobi.Result) {
	out := cmd.OutOrStdout()

	components, err := cluster.Components(res.Values, res.Vectors, verifyPrecision)
	if err != nil {
		fmt.Fprintln(out, "No zero eigenvalue: not a graph Laplacian")
		return
	}
	fmt.Fprintf(out, "Connected components: %d\n", len(components))
	for i, c := range components {
		fmt.Fprintf(out, "  %d: %v\n", i, c.Members)
	}

	col, err := cluster.Fiedler(res.Values)
	if err != nil {
		return
	}
	neg, pos := cluster.Bipartition(res.Vectors, col)
	fmt.Fprintf(out, "Fiedler value: %g\n", res.Values[col])
	fmt.Fprintf(out, "Fiedler partition: %v %v\n", neg.Members, pos.Members)
}
