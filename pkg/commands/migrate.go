package commands

import (
	"context"
	"fmt"
	"log/slog"

	"monodo/pkg/config"
	"monodo/pkg/migrate"
	"monodo/pkg/store"
)

// Migrate pushes the local board into the configured remote server. Items
// that fail stay in the local file for another attempt.
func Migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	local, err := store.NewLocalStore(cfg.LocalFile)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}

	empty, err := local.Empty()
	if err != nil {
		return err
	}
	if empty {
		fmt.Println("Local store is empty, nothing to migrate.")
		return nil
	}

	remote := store.NewRemoteStore(cfg.API.URL, cfg.API.Token)
	ok, err := remote.CheckSession(ctx)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if !ok {
		return fmt.Errorf("api.token is not accepted by %s", cfg.API.URL)
	}

	report, err := migrate.Run(ctx, local, remote, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Migrated %d task(s) and %d categor(ies)\n", report.TasksMigrated, report.CategoriesMigrated)
	if report.Failed() {
		fmt.Printf("%d task(s) and %d categor(ies) failed and were kept locally\n",
			report.TasksFailed, report.CategoriesFailed)
	}
	return nil
}
