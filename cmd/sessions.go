package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List active device sessions",
	RunE:  runSessions,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <session-id>",
	Short: "Revoke one device session",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevoke,
}

func init() {
	sessionsCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// signedInClient builds an API client from the stored credentials.
func signedInClient() (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if cfg.GetAuthToken() == "" {
		return nil, fmt.Errorf("not signed in, run ledgerdesk and sign in first")
	}
	base := cfg.GetServerURL()
	if base == "" {
		base = api.CloudBaseURL
	}
	client := api.New(base)
	client.SetToken(cfg.GetAuthToken())
	return client, nil
}

func runSessions(cmd *cobra.Command, args []string) error {
	client, err := signedInClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sessions, err := client.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}

	fmt.Printf("%-36s  %-28s  %-17s\n", "ID", "DEVICE", "LAST ACTIVE")
	for _, s := range sessions {
		marker := ""
		if s.Current {
			marker = "  (this device)"
		}
		fmt.Printf("%-36s  %-28s  %-17s%s\n",
			s.ID, s.Device, s.LastActive.Format("2006-01-02 15:04"), marker)
	}
	return nil
}

func runRevoke(cmd *cobra.Command, args []string) error {
	client, err := signedInClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.RevokeSession(ctx, args[0]); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	fmt.Printf("Session %s revoked.\n", args[0])
	return nil
}
