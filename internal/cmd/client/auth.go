package client

import (
	"fmt"

	"github.com/rivenlabs/pulse/internal/auth"
	"github.com/spf13/cobra"
)

// NewAuthCommand constructs the `auth` command group and subcommands.
// These operate on the local secret store shared with the server; the
// server picks up a rotated token on restart.
func NewAuthCommand() *cobra.Command {
	authCmd := &cobra.Command{Use: "auth", Short: "Auth token operations"}
	authCmd.AddCommand(
		newAuthShowCommand(),
		newAuthRotateCommand(),
		newAuthResetCommand(),
	)
	return authCmd
}

// newAuthShowCommand constructs the `auth show` subcommand.
func newAuthShowCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the auth token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := localSecretStore()
			manager := auth.NewManager(store)
			token, err := manager.Token()
			if err != nil {
				return err
			}
			full, _ := cmd.Flags().GetBool("full")
			if !full {
				token = auth.MaskToken(token)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "store:", store.Description())
			return nil
		},
	}
	showCmd.Flags().Bool("full", false, "Print the unmasked token")
	return showCmd
}

// newAuthRotateCommand constructs the `auth rotate` subcommand.
func newAuthRotateCommand() *cobra.Command {
	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the auth token with a new one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager := auth.NewManager(localSecretStore())
			token, err := manager.Rotate()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "restart the server and update clients")
			return nil
		},
	}
	return rotateCmd
}

// newAuthResetCommand constructs the `auth reset` subcommand.
func newAuthResetCommand() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored auth token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("use --confirm to delete the stored token")
			}
			manager := auth.NewManager(localSecretStore())
			if err := manager.Reset(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "token deleted; a new one is minted on next server start")
			return nil
		},
	}
	resetCmd.Flags().Bool("confirm", false, "Confirm the reset operation")
	return resetCmd
}
