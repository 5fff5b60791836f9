package session

import (
	"errors"
	"os"

	"github.com/dinerozz/focus-session-backend/internal/tui"
	"github.com/spf13/cobra"
)

func GetSessionCmd(defaultServer string) *cobra.Command {
	var (
		serverURL string
		token     string
	)

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Track a focus session in the terminal dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("FOCUS_TOKEN")
			}
			if token == "" {
				return errors.New("a token is required: pass --token or set FOCUS_TOKEN")
			}
			return tui.Run(tui.NewClient(serverURL, token, 0))
		},
	}

	sessionCmd.Flags().StringVar(&serverURL, "server", defaultServer, "API base URL")
	sessionCmd.Flags().StringVar(&token, "token", "", "JWT from /api/auth/login")

	return sessionCmd
}
