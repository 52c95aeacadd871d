package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the Pulse client.
// It registers the events and auth command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse client commands",
	}
	root.AddCommand(NewEventsCommand(baseURL))
	root.AddCommand(NewAuthCommand())
	return root
}
