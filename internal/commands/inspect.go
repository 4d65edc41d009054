package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/filecrypt/internal/config"
	"github.com/idelchi/filecrypt/internal/logic"
)

// NewInspectCommand creates a new cobra command for the inspect subcommand.
func NewInspectCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspect [flags] files...",
		Aliases: []string{"info"},
		Short:   "Show container headers",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(cfg, true),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.RunInspect(cfg, cmd.OutOrStdout())
		},
	}

	return cmd
}
