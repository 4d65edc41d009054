package logic

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"

	"github.com/idelchi/filecrypt/internal/config"
	"github.com/idelchi/filecrypt/internal/encryption"
	"github.com/idelchi/filecrypt/internal/fileutil"
)

// Inspection is the decoded header of one container.
type Inspection struct {
	Path           string `yaml:"path"`
	FileName       string `yaml:"file-name"`
	FileType       string `yaml:"file-type"`
	EncryptionType string `yaml:"encryption-type"`
	IV             string `yaml:"iv"`
	Offset         int64  `yaml:"offset"`
	Ciphertext     string `yaml:"ciphertext"`
	Sidecar        string `yaml:"sidecar,omitempty"`
}

// Inspect decodes the header of the container at path.
func Inspect(path string) (Inspection, error) {
	header, err := encryption.ReadHeader(path)
	if err != nil {
		return Inspection{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Inspection{}, fmt.Errorf("stat %q: %w", path, err)
	}

	inspection := Inspection{
		Path:           path,
		FileName:       header.FileName,
		FileType:       header.FileType,
		EncryptionType: header.Algorithm.String(),
		IV:             header.IV,
		Offset:         header.Offset,
		//nolint:gosec // size minus offset of a parsed container is non-negative
		Ciphertext: humanize.IBytes(uint64(max(0, info.Size()-header.Offset))),
	}

	if sidecar := encryption.SidecarPath(path); fileutil.Exists(sidecar) {
		inspection.Sidecar = sidecar
	}

	return inspection, nil
}

// RunInspect writes the headers of all containers in the configuration to w as YAML.
// Files that are not containers are reported on stderr and counted as errors.
func RunInspect(cfg *config.Config, w io.Writer) error {
	files, _, err := collectFiles(cfg.Files, isContainer)
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	inspections := make([]Inspection, 0, len(files))

	var errored int

	for _, file := range files {
		inspection, err := Inspect(file)
		if err != nil {
			errored++

			fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", file, err)

			continue
		}

		inspections = append(inspections, inspection)
	}

	if len(inspections) > 0 {
		out, err := yaml.Marshal(inspections)
		if err != nil {
			return fmt.Errorf("marshalling headers: %w", err)
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	if errored > 0 {
		return fmt.Errorf("%d file(s) could not be inspected", errored)
	}

	return nil
}
