// Package main implements the entry point for the ToDo List API server,
// which stores users' tasks and enforces per-task read and update grants.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zapzatron/ToDo-List-API/internal/config"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/postgres"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The --config flag applies to every
// subcommand.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "todo-api",
		Short:        "Task list API with per-task permissions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default ./config.yaml)")

	loadConfig := func() (*config.Config, *slog.Logger, error) {
		return initializeApp(configPath)
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newMigrateCmd(loadConfig),
		newCreateUserCmd(loadConfig),
	)
	return root
}

type configLoader func() (*config.Config, *slog.Logger, error)

func newServeCmd(load configLoader) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}

			if migrateFirst {
				if err := postgres.MigrateUp(cmd.Context(), db, log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}

			return app.startHTTPServer(cmd.Context(), app.setupRouter())
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|up-by-one|down|redo|reset|status|version] [args...]",
		Short: "Run database migrations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], log, args[1:]...)
		},
	}
}

func newCreateUserCmd(load configLoader) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user; the password is read from the terminal or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, log, err := load()
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer app.cleanup()

			user, err := app.userService.Register(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %q with id %d\n", user.Username, user.ID)
			return err
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username to register")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"grant_policy", cfg.Auth.GrantPolicy,
		"metrics_enabled", cfg.Metrics.Enabled)

	return cfg, log, nil
}

// readPassword prompts without echo when in is a terminal and otherwise reads
// the first line of in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
