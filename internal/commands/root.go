package commands

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gogen/pkg/cobraext"

	"github.com/idelchi/filecrypt/internal/config"
	"github.com/idelchi/filecrypt/internal/encryption"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
// Environment variables are the upper-cased flag names prefixed with FILECRYPT_.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version, func(_ *cobra.Command, _ []string) error {
		if err := viper.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		return nil
	})

	root.Use = "filecrypt [flags] command [flags]"
	root.Short = "File encryption utility"
	root.Long = `A file encryption utility writing self-describing AES-256 containers.
Files are encrypted with a freshly generated key, exported next to the container,
or with a key derived from a password.`

	flags := root.PersistentFlags()

	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	flags.BoolP("force", "f", false, "Overwrite existing outputs")
	flags.Bool("preserve-timestamps", false, "Copy the modification time of the input to the output")
	flags.Bool("stats", false, "Print a summary when done")

	flags.StringP("password", "p", "", "Password to derive the key from")
	flags.BoolP("ask", "a", false, "Prompt for the password")
	flags.StringP("key-file", "k", "", "Path to a key file exported by a previous encryption")
	flags.String("algorithm", encryption.AES.String(),
		fmt.Sprintf("Encryption algorithm, one of %v", encryption.Algorithms()))

	flags.StringP("output-dir", "o", "", "Directory for the results, defaults to the directory of each input")
	flags.String("temp-dir", "", "Directory for intermediate files, defaults to the system temp directory")

	flags.String("log-level", logrus.WarnLevel.String(), "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")

	root.AddCommand(NewEncryptCommand(cfg), NewDecryptCommand(cfg), NewInspectCommand(cfg))

	return root
}
