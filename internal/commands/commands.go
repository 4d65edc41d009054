package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/idelchi/gogen/pkg/cobraext"

	"github.com/idelchi/filecrypt/internal/config"
)

// preRun returns a PreRunE handler that stores positional args in cfg.Files
// and validates the configuration.
// With --show the configuration is printed and the command ends with cobraext.ErrExitGracefully.
func preRun(cfg *config.Config, decrypt bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg.Files = args
		cfg.Decrypt = decrypt

		if cfg.Show {
			out, err := cfg.Render()
			if err != nil {
				return err //nolint:wrapcheck
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return cobraext.ErrExitGracefully
		}

		return cobraext.Validate(cfg, cfg) //nolint:wrapcheck
	}
}

// newLogger builds the logger configured by --log-level and --log-format.
func newLogger(cfg *config.Config, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger, nil
}

// askPassword reads the password from the terminal, twice when confirm is set.
func askPassword(confirm bool) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in int

	if !term.IsTerminal(fd) {
		return "", errors.New("--ask requires an interactive terminal")
	}

	read := func(prompt string) (string, error) {
		fmt.Fprint(os.Stderr, prompt)

		password, err := term.ReadPassword(fd)

		fmt.Fprintln(os.Stderr)

		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		return string(password), nil
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}

	if !confirm {
		return password, nil
	}

	again, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}

	if password != again {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}

// resolvePassword fills cfg.Password from the terminal when --ask is set.
func resolvePassword(cfg *config.Config, confirm bool) error {
	if !cfg.Ask {
		return nil
	}

	password, err := askPassword(confirm)
	if err != nil {
		return err
	}

	cfg.Password = password

	return nil
}
