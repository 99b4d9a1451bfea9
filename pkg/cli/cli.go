// Package cli wires the board's commands together. Running monodo with no
// subcommand opens the terminal board.
package cli

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"monodo/pkg/commands"
	"monodo/pkg/config"
	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/ui"
	"monodo/pkg/utils"
)

var (
	// Used for flags.
	configPath      string
	verbose         bool
	roleFlag        string
	dateFlag        string
	expectedMinutes int
	formatFlag      string
	statusFlag      string
	yesFlag         bool

	rootCmd = &cobra.Command{
		Use:   "monodo",
		Short: "A task board with per-task timers.",
		Long: `Monodo is a three-column task board (backlog, in progress, completed)
with a single-active-timer time tracker. Without a subcommand it opens
the terminal board against the configured store.`,
		RunE: runBoard,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return commands.Serve(cfg, logger)
		},
	}

	addCmd = &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task without opening the board.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			return commands.AddTask(context.Background(), s, args[0], dateFlag, expectedMinutes)
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Push the local board to the remote server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			return commands.Migrate(context.Background(), cfg, logger)
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export <file>",
		Short: "Export tasks and categories to a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			return commands.Export(context.Background(), s, args[0], formatFlag)
		},
	}

	importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks and categories from an exported file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			return commands.Import(context.Background(), s, args[0])
		},
	}

	purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete tasks matching the given filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			return commands.Purge(context.Background(), s, dateFlag, statusFlag, yesFlag)
		},
	}
)

// Execute runs the CLI.
func Execute() {
	defer utils.CloseLogger()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&roleFlag, "role", "", "Capability for privileged operations (USER, DEVELOPER, ADMIN)")

	addCmd.Flags().StringVar(&dateFlag, "date", "", "Day for the task (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&expectedMinutes, "expected", 0, "Expected time in minutes")

	exportCmd.Flags().StringVar(&formatFlag, "format", "json", "Export format (json, yaml)")

	purgeCmd.Flags().StringVar(&dateFlag, "date", "", "Only purge tasks on this day (YYYY-MM-DD)")
	purgeCmd.Flags().StringVar(&statusFlag, "status", "", "Only purge tasks with this status")
	purgeCmd.Flags().BoolVar(&yesFlag, "yes", false, "Skip confirmation")

	rootCmd.AddCommand(serveCmd, addCmd, migrateCmd, exportCmd, importCmd, purgeCmd)
}

// setup loads the configuration and initializes logging.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := utils.InitLogger(cfg.Verbose || verbose)
	return cfg, logger, nil
}

// openStore picks the configured backend.
func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Store == "remote" {
		return store.NewRemoteStore(cfg.API.URL, cfg.API.Token), nil
	}
	return store.NewLocalStore(cfg.LocalFile)
}

func callerRole() task.Role {
	switch roleFlag {
	case string(task.RoleDeveloper):
		return task.RoleDeveloper
	case string(task.RoleAdmin):
		return task.RoleAdmin
	default:
		return task.RoleUser
	}
}

// runBoard opens the TUI against the configured store.
func runBoard(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	logger.Info("opening board", "store", cfg.Store)
	p := tea.NewProgram(ui.NewModel(s, cfg, callerRole()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
