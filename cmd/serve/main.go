package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/Diagonalization/internal/cli"
	"github.com/KyungWonPark/Diagonalization/internal/metrics"
	"github.com/KyungWonPark/Diagonalization/internal/server"
	"github.com/KyungWonPark/Diagonalization/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cli.Main(newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		addr string
		dsn  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve matrices and their eigen decompositions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := cli.Setup(cmd.Flags())
			if err != nil {
				return err
			}
			cli.Override(cmd.Flags(), "addr", func() { cfg.Server.Addr = addr })
			cli.Override(cmd.Flags(), "dsn", func() { cfg.Database.DSN = dsn })
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := store.Open(ctx, cfg.Database.DSN, cfg.Database.QueryTimeout)
			if err != nil {
				return err
			}
			defer st.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			options := []server.Option{server.WithMetrics(metrics.New(reg), reg)}

			c, err := cli.Cache(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			if c != nil {
				defer c.Close()
				options = append(options, server.WithCache(c))
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.New(st, cfg.Jacobi, log, options...).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("Listening")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	fs := cmd.Flags()
	cli.AddConfigFlags(fs)
	fs.StringVar(&addr, "addr", ":8080", "listen address")
	fs.StringVar(&dsn, "dsn", "", "database connection string")
	return cmd
}
