// Command filecrypt encrypts files into self-describing AES containers and back.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/gogen/pkg/cobraext"

	"github.com/idelchi/filecrypt/internal/commands"
	"github.com/idelchi/filecrypt/internal/config"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	cfg := &config.Config{}

	switch err := commands.NewRootCommand(cfg, version).Execute(); {
	case errors.Is(err, cobraext.ErrExitGracefully):
	case err != nil:
		fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
