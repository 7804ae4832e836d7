// Package applist reads the newline-delimited list of apps processed when no
// app is named on the command line.
package applist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel errors for app list loading.
var (
	ErrMissing = errors.New("app list not found")
	ErrEmpty   = errors.New("app list has no entries")
)

// Parse returns the app references in r, in order. Surrounding whitespace is
// trimmed; blank lines and lines starting with # are skipped.
func Parse(r io.Reader) ([]string, error) {
	var apps []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		apps = append(apps, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read app list: %w", err)
	}

	return apps, nil
}

// Load reads the app list at path. It fails with ErrMissing if the file does
// not exist and ErrEmpty if it lists no apps.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("open app list: %w", err)
	}
	defer f.Close()

	apps, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	return apps, nil
}
