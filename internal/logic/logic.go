// Package logic implements the core business logic for encryption, decryption and inspection.
package logic

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/filecrypt/internal/config"
	"github.com/idelchi/filecrypt/internal/encryption"
	"github.com/idelchi/filecrypt/internal/fileutil"
)

// ErrOutputExists is returned when a result would replace an existing file without --force.
var ErrOutputExists = errors.New("output already exists (use --force to overwrite)")

// ErrOutputClaimed is returned when two inputs of one run resolve to the same output.
var ErrOutputClaimed = errors.New("output is already written by another input")

// result represents the outcome of processing a single file.
type result struct {
	// input file path
	input string
	// output file path
	output string
	// output file size in bytes
	outputSize int64
	// consumed lists extra inputs, such as a sidecar key, removed along with input on --delete
	consumed []string
	// err is any error that occurred during processing
	err error
}

// runner holds the state of one Run.
type runner struct {
	cfg    *config.Config
	log    logrus.FieldLogger
	claims claims
}

// Run encrypts or decrypts every file in the configuration.
func Run(cfg *config.Config, logger logrus.FieldLogger) error {
	start := time.Now()

	accept := isPlain
	if cfg.Decrypt {
		accept = isContainer
	}

	files, scanned, err := collectFiles(cfg.Files, accept)
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	r := &runner{cfg: cfg, log: logger, claims: claims{paths: make(map[string]string)}}

	processed, errored, totalSize, err := r.processFiles(files)

	if cfg.Stats {
		printStats(scanned, scanned-len(files), processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// processFiles concurrently processes files. A failing file does not stop the others.
//
//nolint:cyclop
func (r *runner) processFiles(files []string) (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(r.cfg.Parallel)

	results := make(chan result, len(files))
	done := make(chan struct{})

	go func() {
		defer close(done)

		for res := range results {
			if res.err != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", res.input, res.err)

				continue
			}

			processed++

			totalSize += res.outputSize

			if !r.cfg.Quiet {
				fmt.Printf("Processed %q -> %q\n", res.input, res.output) //nolint:forbidigo
			}

			if r.cfg.Delete {
				r.deleteInputs(res)
			}
		}
	}()

	for _, file := range files {
		group.Go(func() error {
			var res result

			if r.cfg.Decrypt {
				res = r.decryptFile(file)
			} else {
				res = r.encryptFile(file)
			}

			res.input = file
			results <- res

			return res.err
		})
	}

	err = group.Wait()

	close(results)

	<-done // Wait for printer to finish

	if err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

func (r *runner) deleteInputs(res result) {
	for _, path := range append([]string{res.input}, res.consumed...) {
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", path, err)

			continue
		}

		if !r.cfg.Quiet {
			fmt.Printf("Deleted %q\n", path) //nolint:forbidigo
		}
	}
}

func (r *runner) options() []encryption.Option {
	return []encryption.Option{
		encryption.WithLogger(r.log),
		encryption.WithTempDir(r.cfg.TempDir),
	}
}

// outputDir is where the result for input goes.
func (r *runner) outputDir(input string) string {
	if r.cfg.OutputDir != "" {
		return r.cfg.OutputDir
	}

	return filepath.Dir(input)
}

// reserve claims every path for input and refuses existing files unless forced.
func (r *runner) reserve(input string, paths ...string) error {
	for _, path := range paths {
		if err := r.claims.claim(path, input); err != nil {
			return err
		}

		if !r.cfg.Force && fileutil.Exists(path) {
			return fmt.Errorf("%w: %q", ErrOutputExists, path)
		}
	}

	return nil
}

// claims tracks which input writes which output within one run.
type claims struct {
	mu    sync.Mutex
	paths map[string]string
}

func (c *claims) claim(path, input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := filepath.Clean(path)

	if owner, ok := c.paths[key]; ok && owner != input {
		return fmt.Errorf("%w: %q is written by %q", ErrOutputClaimed, path, owner)
	}

	c.paths[key] = input

	return nil
}

func printStats(scanned, excluded, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
