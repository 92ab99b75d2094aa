package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/shelfsync/internal/client/api"
	"github.com/iudanet/shelfsync/internal/client/iocli"
	"github.com/iudanet/shelfsync/internal/client/storage/boltdb"
	"github.com/iudanet/shelfsync/internal/client/sync"
	"github.com/iudanet/shelfsync/internal/config"
)

// env собирает зависимости команды из конфигурации
type env struct {
	io         iocli.IO
	configFile string
}

// NewRootCommand создает корневую команду клиента
func NewRootCommand(io iocli.IO, version string) *cobra.Command {
	e := &env{io: io}

	root := &cobra.Command{
		Use:           "shelfsync",
		Short:         "Reading list kept in sync with a shelfsync server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&e.configFile, "config", "", "Path to config file")
	f.String(config.KeyServer, "http://localhost:8080", "Server URL")
	f.String(config.KeyDB, "shelfsync.db", "Path to local database")
	f.String(config.KeyZone, "library", "Remote zone holding the records")
	f.String(config.KeyToken, "", "Access token (env SHELFSYNC_TOKEN)")
	f.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")
	f.String(config.KeyLogFile, "", "Write logs to a rotating file instead of stderr")
	f.Int(config.KeyMaxBatchSize, sync.DefaultMaxBatchSize, "Records per upload after a batch limit error")
	f.Duration(config.KeyPollInterval, 30*time.Second, "How often watch asks the server for changes")
	f.Duration(config.KeyNetworkRetryDelay, api.DefaultNetworkRetryDelay, "Pause before retrying after a connection failure")

	root.AddCommand(
		e.addCmd(),
		e.editCmd(),
		e.listCmd(),
		e.deleteCmd(),
		e.statusCmd(),
		e.syncCmd(),
		e.watchCmd(),
	)
	return root
}

// run открывает локальную базу, подключает синхронизацию и выполняет fn
func (e *env) run(cmd *cobra.Command, fn func(ctx context.Context, c *Cli) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	v, err := config.New(e.configFile)
	if err != nil {
		return err
	}
	config.ClientDefaults(v)
	if err := config.Bind(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.LoadClient(v)
	if err != nil {
		return err
	}

	logger, logCloser, err := config.NewLogger(cfg.LogLevel, cfg.LogFile, config.TextFormat, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	store, err := boltdb.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	c := New(e.io, store, store, logger, cfg.PollInterval)
	if err := c.EnableSync(ctx); err != nil {
		return err
	}
	client := api.NewClient(cfg.Server, cfg.Token, logger)
	client.SetNetworkRetryDelay(cfg.NetworkRetryDelay)
	c.SetSyncer(sync.New(store, store, client, sync.Options{
		Logger:       logger,
		OnFatal:      c.OnFatal,
		Zone:         cfg.Zone,
		MaxBatchSize: cfg.MaxBatchSize,
	}))

	return fn(ctx, c)
}

func (e *env) addCmd() *cobra.Command {
	var opts AddOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Example: `  shelfsync add --title "The Hobbit" --author "J. R. R. Tolkien" --isbn 978-0261102217
  shelfsync add --title Dune --author "Herbert, Frank" --pages 412 --sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runAdd(ctx, opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Title, "title", "", "Book title (prompted when empty)")
	f.StringArrayVar(&opts.Authors, "author", nil, `Author as "First Last" or "Last, First"; repeatable`)
	f.StringVar(&opts.ISBN, "isbn", "", "ISBN-13")
	f.Int32Var(&opts.Pages, "pages", 0, "Page count")
	f.StringVar(&opts.Notes, "notes", "", "Notes")
	f.StringVar(&opts.Language, "language", "", "Language code (ISO 639-1)")
	f.BoolVar(&opts.Sync, "sync", false, "Sync right after the change")
	return cmd
}

func (e *env) editCmd() *cobra.Command {
	var (
		opts                                          EditOptions
		title, notes, language, isbn, started, finish string
		authors                                       []string
		pages, currentPage                            int32
		rating                                        int16
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a book",
		Long: `Change fields of a book. Only the given flags are changed.

Empty --isbn, --started or --finished clear the value; 0 clears a number.
Dates are YYYY-MM-DD or "today".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("title") {
				opts.Title = &title
			}
			if f.Changed("author") {
				opts.Authors = append([]string{}, authors...)
			}
			if f.Changed("isbn") {
				opts.ISBN = &isbn
			}
			if f.Changed("pages") {
				opts.Pages = &pages
			}
			if f.Changed("page") {
				opts.CurrentPage = &currentPage
			}
			if f.Changed("rating") {
				opts.Rating = &rating
			}
			if f.Changed("notes") {
				opts.Notes = &notes
			}
			if f.Changed("language") {
				opts.Language = &language
			}
			if f.Changed("started") {
				opts.Started = &started
			}
			if f.Changed("finished") {
				opts.Finished = &finish
			}
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runEdit(ctx, args[0], opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Book title")
	f.StringArrayVar(&authors, "author", nil, "Replace authors; repeatable")
	f.StringVar(&isbn, "isbn", "", "ISBN-13")
	f.Int32Var(&pages, "pages", 0, "Page count")
	f.Int32Var(&currentPage, "page", 0, "Current page")
	f.Int16Var(&rating, "rating", 0, "Rating 1..10")
	f.StringVar(&notes, "notes", "", "Notes")
	f.StringVar(&language, "language", "", "Language code (ISO 639-1)")
	f.StringVar(&started, "started", "", "Started reading on")
	f.StringVar(&finish, "finished", "", "Finished reading on")
	f.BoolVar(&opts.Sync, "sync", false, "Sync right after the change")
	return cmd
}

func (e *env) listCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runList(ctx, state)
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Only books in state: to_read, reading, finished")
	return cmd
}

func (e *env) deleteCmd() *cobra.Command {
	var yes, autoSync bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runDelete(ctx, args[0], yes, autoSync)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&autoSync, "sync", false, "Sync right after the change")
	return cmd
}

func (e *env) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runStatus(ctx)
			})
		},
	}
}

func (e *env) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload local changes and fetch remote ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runSync(ctx)
			})
		},
	}
}

func (e *env) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runWatch(ctx)
			})
		},
	}
}
