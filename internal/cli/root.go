package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/config"
	"trustdesk-cli/internal/entities"
	"trustdesk-cli/internal/format"
	"trustdesk-cli/internal/journal"
	"trustdesk-cli/internal/listing"
	"trustdesk-cli/internal/logging"
	"trustdesk-cli/internal/store"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X trustdesk-cli/internal/cli.Version=...".
var Version = "dev"

type App struct {
	Flags  config.Flags
	Pretty bool

	cfg      *store.GlobalConfig
	settings config.Settings
	log      *slog.Logger
	closeLog func() error

	session *api.Session
	client  *api.Client

	journal      *journal.Journal
	journalTried bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "trustdesk",
		Short:         "Back-office console for users, projects, complaints and audits",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  trustdesk

  # Sign in and list the second page of projects
  trustdesk login --email you@example.com
  trustdesk projects list --page 2

  # Direct record lookup (shortcut for: trustdesk users show 12)
  trustdesk users:12
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd, cmd == cmd.Root())
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Flags.APIURL, "api-url", "", "API base URL, e.g. https://desk.example.com/api (env TRUSTDESK_API_URL)")
	cmd.PersistentFlags().StringVar(&app.Flags.Profile, "profile", "", "Profile name (env TRUSTDESK_PROFILE; default: current profile)")
	cmd.PersistentFlags().StringVar(&app.Flags.Token, "token", "", "Bearer token (env TRUSTDESK_TOKEN; default: saved login)")
	cmd.PersistentFlags().StringVar(&app.Flags.Format, "format", "", "Output format: json|edn|yaml (env TRUSTDESK_FORMAT)")
	cmd.PersistentFlags().StringVar(&app.Flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error (env TRUSTDESK_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newProfilesCmd(app))
	cmd.AddCommand(newEntityCmd(app, entities.Users()))
	cmd.AddCommand(newEntityCmd(app, entities.Projects()))
	cmd.AddCommand(newEntityCmd(app, entities.Complaints()))
	cmd.AddCommand(newEntityCmd(app, entities.Inspections()))
	cmd.AddCommand(newEntityCmd(app, entities.Trustmarks()))
	cmd.AddCommand(newEntityCmd(app, entities.Notifications()))
	cmd.AddCommand(newEntityCmd(app, entities.Activity()))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup resolves settings and logging once per invocation. The console
// logs to a file because it owns the terminal.
func (a *App) setup(cmd *cobra.Command, interactive bool) error {
	env, err := config.LoadEnv()
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("load config: %w", err))
	}
	a.cfg = cfg
	a.settings = config.Resolve(a.Flags, env, cfg)
	if !format.Supported(a.settings.Format) {
		return writeErr(cmd, fmt.Errorf("unknown format: %s (want %s)", a.settings.Format, strings.Join(format.Formats, ", ")))
	}

	logFile := a.settings.LogFile
	if interactive && logFile == "" {
		if dir, err := store.ConfigDir(); err == nil {
			logFile = filepath.Join(dir, logging.FileName)
		}
	}
	log, closeLog, err := logging.New(logging.Config{
		Level:  a.settings.LogLevel,
		File:   logFile,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	a.log = log.With("profile", a.settings.Profile)
	a.closeLog = closeLog
	return nil
}

func (a *App) close() {
	if a.journal != nil {
		_ = a.journal.Close()
		a.journal = nil
	}
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

func (a *App) logger() *slog.Logger {
	if a.log == nil {
		return logging.Discard()
	}
	return a.log
}

// Client builds the API client on first use.
func (a *App) Client() (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.session == nil {
		a.session = api.NewSession(a.settings.Token)
	}
	cfg := a.settings.ClientConfig("trustdesk-cli/" + Version)
	cfg.Logger = a.logger()
	c, err := api.NewClient(cfg, a.session)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Journal opens the local mutation journal. It is best effort: when it
// cannot be opened mutations still go through, just unrecorded.
func (a *App) Journal(ctx context.Context) *journal.Journal {
	if a.journalTried {
		return a.journal
	}
	a.journalTried = true
	dir, err := store.ConfigDir()
	if err != nil {
		a.logger().Warn("journal unavailable", "error", err)
		return nil
	}
	j, err := journal.Open(ctx, filepath.Join(dir, journal.FileName), a.settings.Profile, a.logger())
	if err != nil {
		a.logger().Warn("journal unavailable", "error", err)
		return nil
	}
	a.journal = j
	return j
}

func newController[T listing.Record](ctx context.Context, app *App, d entities.Descriptor[T]) (*listing.Controller[T], *api.Resource[T], error) {
	c, err := app.Client()
	if err != nil {
		return nil, nil, err
	}
	res := d.Resource(c)
	opts := []listing.Option[T]{listing.WithErrorMessager[T](api.Message)}
	if j := app.Journal(ctx); j != nil {
		opts = append(opts, listing.WithObserver[T](j))
	}
	return listing.NewController[T](d.Name, res, opts...), res, nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.settings.Format, app.Pretty)
}
