package commands

import (
	"fmt"
	"log/slog"

	"monodo/pkg/config"
	"monodo/pkg/database"
	"monodo/pkg/server"
)

// Serve runs the HTTP API backed by the configured SQL database.
func Serve(cfg config.Config, logger *slog.Logger) error {
	if cfg.Server.Secret == "" {
		return fmt.Errorf("server.secret must be set to sign session tokens")
	}

	db, err := database.ConnectDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("serving board API", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
	srv := server.NewServer(database.NewStore(db, cfg.Database.Driver), cfg.Server.Secret, logger)
	return srv.Run(cfg.Server.Addr)
}
