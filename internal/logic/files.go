package logic

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	containerExt = ".enc"
	keyExt       = ".key"
)

// isPlain skips containers and key files when walking directories for encryption.
func isPlain(path string) bool {
	ext := filepath.Ext(path)

	return !strings.EqualFold(ext, containerExt) && !strings.EqualFold(ext, keyExt)
}

// isContainer keeps .enc files when walking directories for decryption.
func isContainer(path string) bool {
	return strings.EqualFold(filepath.Ext(path), containerExt)
}

// collectFiles walks all positional args and returns every file path found, without duplicates.
// Files named explicitly are always kept; files found by walking a directory are kept when accept allows.
// scanned counts every distinct file seen.
func collectFiles(args []string, accept func(string) bool) (paths []string, scanned int, err error) {
	seen := make(map[string]struct{})

	add := func(path string, explicit bool) {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			return
		}

		seen[clean] = struct{}{}
		scanned++

		if explicit || accept(clean) {
			paths = append(paths, clean)
		}
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil {
			return nil, scanned, fmt.Errorf("stat %q: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg, true)

			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			add(path, false)

			return nil
		})
		if err != nil {
			return nil, scanned, fmt.Errorf("walking %q: %w", arg, err)
		}
	}

	return paths, scanned, nil
}
