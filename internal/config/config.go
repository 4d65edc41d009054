// Package config holds the runtime configuration of filecrypt and its validation.
package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/gogen/pkg/validator"
)

// ErrUsage indicates an error in command-line usage or configuration.
var ErrUsage = errors.New("usage error")

// Config holds the configuration shared by all commands.
type Config struct {
	// Password derives the key instead of generating one.
	Password string `label:"--password" mapstructure:"password" validate:"exclusive=key-file" yaml:"password"`
	// Ask prompts for the password on the terminal.
	Ask bool `label:"--ask" mapstructure:"ask" validate:"exclusive=password,exclusive=key-file" yaml:"ask"`
	// KeyFile holds a base64 key exported by a previous encryption.
	KeyFile string `label:"--key-file" mapstructure:"key-file" yaml:"key-file"`

	// Algorithm is the EncryptionType written to new containers.
	Algorithm string `label:"--algorithm" mapstructure:"algorithm" validate:"algorithm" yaml:"algorithm"`

	// OutputDir receives the results. Empty means next to each input.
	OutputDir string `label:"--output-dir" mapstructure:"output-dir" yaml:"output-dir"`
	// TempDir receives intermediate files. Empty means the system temp dir.
	TempDir string `label:"--temp-dir" mapstructure:"temp-dir" yaml:"temp-dir"`

	// Parallel is the number of files processed at once.
	Parallel int `label:"--parallel" mapstructure:"parallel" validate:"min=1" yaml:"parallel"`

	Quiet              bool `label:"--quiet"               mapstructure:"quiet"               yaml:"quiet"`
	Delete             bool `label:"--delete"              mapstructure:"delete"              yaml:"delete"`
	Force              bool `label:"--force"               mapstructure:"force"               yaml:"force"`
	PreserveTimestamps bool `label:"--preserve-timestamps" mapstructure:"preserve-timestamps" yaml:"preserve-timestamps"`
	Stats              bool `label:"--stats"               mapstructure:"stats"               yaml:"stats"`
	Show               bool `label:"--show"                mapstructure:"show"                yaml:"-"`

	LogLevel  string `label:"--log-level"  mapstructure:"log-level"  validate:"oneof=trace debug info warn warning error fatal panic" yaml:"log-level"`
	LogFormat string `label:"--log-format" mapstructure:"log-format" validate:"oneof=text json"                                      yaml:"log-format"`

	// Decrypt is set by the decrypt command.
	Decrypt bool `mapstructure:"-" yaml:"decrypt"`

	// Files are the positional arguments.
	Files []string `label:"files" mapstructure:"-" validate:"min=1" yaml:"files"`
}

// Display reports whether the configuration should be shown instead of run.
func (c Config) Display() bool {
	return c.Show
}

// Validate checks config against its struct tags.
// It returns a wrapped ErrUsage listing every violated rule.
func (c Config) Validate(config any) error {
	validator := validator.NewValidator()

	if err := registerValidations(validator); err != nil {
		return fmt.Errorf("registering validations: %w", err)
	}

	errs := validator.Validate(config)

	switch {
	case errs == nil:
		return nil
	case len(errs) == 1:
		return fmt.Errorf("%w: %w", ErrUsage, errs[0])
	default:
		return fmt.Errorf("%ws:\n%w", ErrUsage, errors.Join(errs...))
	}
}

// Render renders the configuration as YAML with the password masked.
func (c Config) Render() (string, error) {
	if c.Password != "" {
		c.Password = "****"
	}

	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshalling configuration: %w", err)
	}

	return string(out), nil
}
