package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/shelfsync/internal/config"
	"github.com/iudanet/shelfsync/internal/server"
	"github.com/iudanet/shelfsync/internal/server/jwt"
	"github.com/iudanet/shelfsync/internal/server/metrics"
	"github.com/iudanet/shelfsync/internal/server/storage/sqlite"
	"github.com/iudanet/shelfsync/internal/validation"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "shelfsync-server",
		Short:         "Reference record server for shelfsync clients",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	root.PersistentFlags().String(config.KeyJWTSecret, "", "Secret used to sign access tokens (env SHELFSYNC_JWT_SECRET)")

	load := func(cmd *cobra.Command) (*config.Server, error) {
		v, err := config.New(configFile)
		if err != nil {
			return nil, err
		}
		config.ServerDefaults(v)
		if err := config.Bind(v, cmd.Flags()); err != nil {
			return nil, err
		}
		return config.LoadServer(v)
	}

	root.AddCommand(newServeCmd(load), newTokenCmd(load), newVersionCmd())
	return root
}

type loader func(cmd *cobra.Command) (*config.Server, error)

func newServeCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serve zones, batch writes and the change feed over HTTP.

Deletion markers older than --change-retention are pruned every
--prune-interval; clients holding older change tokens refetch from scratch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.String(config.KeyAddr, ":8080", "Listen address")
	f.String(config.KeyDB, "shelfsync-server.db", "Path to SQLite database")
	f.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")
	f.String(config.KeyLogFile, "", "Write logs to a rotating file")
	f.Int(config.KeyMaxBatchSize, 400, "Maximum records and deletions per batch")
	f.Int(config.KeyPageSize, 200, "Maximum changes per feed page")
	f.Int(config.KeyRateLimit, 600, "Requests allowed per client per window")
	f.Duration(config.KeyRateWindow, time.Minute, "Rate limit window")
	f.Duration(config.KeyChangeRetention, 30*24*time.Hour, "How long deletion markers are kept")
	f.Duration(config.KeyPruneInterval, time.Hour, "How often deletion markers are pruned")
	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Server) error {
	ctx := cmd.Context()

	logger, closer, err := config.NewLogger(cfg.LogLevel, cfg.LogFile, config.JSONFormat, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	store, err := sqlite.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	srv := server.New(logger, store, jwt.NewService(cfg.JWTSecret), metrics.New(), server.Config{
		Addr:            cfg.Addr,
		Version:         Version,
		MaxBatchSize:    cfg.MaxBatchSize,
		PageSize:        cfg.PageSize,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		ChangeRetention: cfg.ChangeRetention,
		PruneInterval:   cfg.PruneInterval,
	})

	logger.Info("Starting shelfsync server", "version", Version, "db", cfg.DB)
	return srv.Run(ctx)
}

func newTokenCmd(load loader) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <owner>",
		Short: "Issue an access token for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			if err := validation.ValidateOwner(args[0]); err != nil {
				return err
			}
			token, err := jwt.NewService(cfg.JWTSecret).GenerateToken(args[0], ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, 0 for no expiry")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "shelfsync server\n")
	_, _ = fmt.Fprintf(w, "Version:    %s\n", Version)
	_, _ = fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	_, _ = fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
}
