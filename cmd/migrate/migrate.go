package migrate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dinerozz/focus-session-backend/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func GetMigrateCmd(driver, dbURL string, logger *slog.Logger) *cobra.Command {
	var down bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrations.New(driver, dbURL)
			if err != nil {
				return err
			}
			defer m.Close()

			if down {
				return rollback(m, logger)
			}

			if err := m.Up(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					logger.Info("no new migrations to apply")
					return nil
				}
				return fmt.Errorf("failed to apply up migrations: %w", err)
			}

			logger.Info("migrations applied successfully")
			return nil
		},
	}

	migrateCmd.Flags().BoolVarP(&down, "down", "d", false, "Rollback migrations")

	return migrateCmd
}

func rollback(m *migrate.Migrate, logger *slog.Logger) error {
	err := m.Down()
	if err == nil {
		logger.Info("migrations rolled back successfully")
		return nil
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to rollback")
		return nil
	}

	var dirty migrate.ErrDirty
	if !errors.As(err, &dirty) {
		return fmt.Errorf("failed to apply down migrations: %w", err)
	}

	logger.Warn("database is in a dirty state, forcing version before rollback", slog.Int("version", dirty.Version))
	if err := m.Force(dirty.Version); err != nil {
		return fmt.Errorf("failed to force migration version: %w", err)
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply down migrations: %w", err)
	}
	logger.Info("migrations rolled back successfully")
	return nil
}
