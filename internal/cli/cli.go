// Package cli holds the start-up code shared by the commands under cmd/.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KyungWonPark/Diagonalization/internal/cache"
	"github.com/KyungWonPark/Diagonalization/internal/config"
	"github.com/KyungWonPark/Diagonalization/internal/logging"
)

// AddConfigFlags registers the flags every command understands.
func AddConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML configuration file")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// Setup loads the configuration named by --config and builds the logger.
func Setup(fs *pflag.FlagSet) (config.Config, zerolog.Logger, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	level, err := fs.GetString("log-level")
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	Override(fs, "log-level", func() { cfg.Log.Level = level })

	return cfg, logging.New(cfg.Log.Level, cfg.Log.Pretty), nil
}

// Override calls apply only when the user set the named flag, so that flag
// defaults never shadow values from the configuration file.
func Override(fs *pflag.FlagSet, name string, apply func()) {
	if fs.Changed(name) {
		apply()
	}
}

// Cache dials the result cache when it is enabled and returns nil otherwise.
func Cache(ctx context.Context, r config.Redis, log zerolog.Logger) (*cache.RedisCache, error) {
	if !r.Enabled {
		return nil, nil
	}

	c, err := cache.Dial(ctx, r.Addr, r.DB, r.Prefix, r.TTL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", r.Addr).Msg("Connected to result cache")
	return c, nil
}

// Main runs root until it returns or the process is interrupted.
func Main(root *cobra.Command) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root.SilenceUsage = true
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
