// Command seed prepares a database and lets operators work the review queue.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/crustntrust/site-api/internal/config"
)

// env is what every subcommand needs once connected.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	client *mongo.Client
	db     *mongo.Database
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	e := &env{}

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Seed the site database and review submissions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			logger, err := config.NewLogger(level)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
			if err != nil {
				return fmt.Errorf("mongo connect: %w", err)
			}

			e.cfg = cfg
			e.logger = logger
			e.client = client
			e.db = client.Database(cfg.MongoDatabase)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e.client == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.client.Disconnect(ctx); err != nil {
				e.logger.Warn("mongo disconnect failed", zap.Error(err))
			}
			_ = e.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newSeedFormsCmd(e), newSeedSettingsCmd(e), newReviewCmd(e))
	return root
}
