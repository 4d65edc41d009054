package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/filecrypt/internal/config"
	"github.com/idelchi/filecrypt/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Long: `Encrypt files into <name>.enc containers.
Without a password a random key is generated per file and written to <name>.key.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(cfg, false),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := resolvePassword(cfg, true); err != nil {
				return err
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return logic.Run(cfg, logger)
		},
	}

	return cmd
}
