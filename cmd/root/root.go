package root

import (
	"fmt"
	"log/slog"

	"github.com/dinerozz/focus-session-backend/cmd/history"
	"github.com/dinerozz/focus-session-backend/cmd/migrate"
	"github.com/dinerozz/focus-session-backend/cmd/session"
	"github.com/dinerozz/focus-session-backend/config"
	"github.com/dinerozz/focus-session-backend/server"
	"github.com/spf13/cobra"
)

func GetRootCmd(config *config.Config, logger *slog.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "focus-session-backend",
		Short:         "Focus session tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.RunServer(config, logger)
		},
	})

	rootCmd.AddCommand(migrate.GetMigrateCmd(config.DB.Driver, DatabaseURL(config.DB), logger))
	rootCmd.AddCommand(session.GetSessionCmd(config.Server.BaseURL))
	rootCmd.AddCommand(history.GetHistoryCmd(config, logger))

	return rootCmd
}

// DatabaseURL builds the golang-migrate URL for the configured driver.
func DatabaseURL(db config.DatabaseConfig) string {
	if db.Driver == "sqlite" {
		return "sqlite://" + db.Path
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.DBName,
		db.SSLMode)
}
