package history

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dinerozz/focus-session-backend/config"
	"github.com/dinerozz/focus-session-backend/internal/repository"
	service "github.com/dinerozz/focus-session-backend/internal/service/history"
	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
)

func GetHistoryCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored sessions",
	}

	var (
		userID string
		format string
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's sessions as json or yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.FromString(userID)
			if err != nil {
				return errors.New("--user must be a valid UUID")
			}

			db, err := repository.NewRepository(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := service.NewService(repository.NewSessionRepository(db), nil, cfg.History, logger)
			records, err := srv.All(cmd.Context(), id)
			if err != nil {
				return err
			}

			if err := service.Export(cmd.OutOrStdout(), records, format); err != nil {
				return fmt.Errorf("failed to export history: %w", err)
			}
			return nil
		},
	}

	exportCmd.Flags().StringVar(&userID, "user", "", "User ID")
	exportCmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	_ = exportCmd.MarkFlagRequired("user")

	historyCmd.AddCommand(exportCmd)
	return historyCmd
}
