package client

import (
	"github.com/spf13/cobra"
)

// AddCommands registers the client command groups on root.
func AddCommands(root *cobra.Command, baseURL BaseURLFunc) {
	root.AddCommand(
		NewCounterCommand(),
		NewMilestonesCommand(),
		NewLoginCommand(baseURL),
		NewProfileCommand(baseURL),
		NewMemoryCommand(baseURL),
		NewHealthCommand(),
	)
}
