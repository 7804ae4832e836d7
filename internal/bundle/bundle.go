// Package bundle reads and modifies macOS application bundles: resolving an
// application reference to its .app directory, parsing Info.plist, and
// locating, reading and replacing the bundle icon.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// Extension is the directory suffix of an application bundle.
const Extension = ".app"

// Sentinel errors for bundle operations.
var (
	ErrAppNotFound         = errors.New("app not found")
	ErrAmbiguousApp        = errors.New("ambiguous app name")
	ErrNotBundle           = errors.New("not an application bundle")
	ErrMissingIcon         = errors.New("no icon resource in bundle")
	ErrUnsupportedPlatform = errors.New("custom icon marker is only supported on macOS")
)

// Info holds the Info.plist keys iconkeep cares about.
//
// The icon file lists are decoded loosely because third-party bundles are not
// consistent about their types.
type Info struct {
	Identifier  string `plist:"CFBundleIdentifier"`
	Name        string `plist:"CFBundleName"`
	DisplayName string `plist:"CFBundleDisplayName"`
	IconFile    string `plist:"CFBundleIconFile"`
	IconName    string `plist:"CFBundleIconName"`
	IconFiles   any    `plist:"CFBundleIconFiles"`
	Icons       any    `plist:"CFBundleIcons"`
}

// Bundle is an opened application bundle.
type Bundle struct {
	Path string
	Info Info
}

// Open reads the bundle at path. The path must name a directory ending in
// .app that contains Contents/Info.plist.
func Open(path string) (*Bundle, error) {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return nil, fmt.Errorf("%w: %s", ErrNotBundle, path)
	}

	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAppNotFound, path)
		}
		return nil, fmt.Errorf("stat bundle: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotBundle, path)
	}

	info, err := readInfo(path)
	if err != nil {
		return nil, err
	}

	return &Bundle{Path: path, Info: *info}, nil
}

// InfoPath returns the path of the bundle's Info.plist.
func (b *Bundle) InfoPath() string {
	return filepath.Join(b.Path, "Contents", "Info.plist")
}

// ResourcesDir returns the bundle's Contents/Resources directory.
func (b *Bundle) ResourcesDir() string {
	return filepath.Join(b.Path, "Contents", "Resources")
}

// Stem returns the bundle directory name without the .app suffix.
func (b *Bundle) Stem() string {
	base := filepath.Base(b.Path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// DisplayName returns the name shown to the user, preferring the Info.plist
// values over the directory name.
func (b *Bundle) DisplayName() string {
	switch {
	case b.Info.DisplayName != "":
		return b.Info.DisplayName
	case b.Info.Name != "":
		return b.Info.Name
	default:
		return b.Stem()
	}
}

// NormalizeName folds an app name for comparison: the .app suffix is dropped,
// surrounding space trimmed, and the result lowercased.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(strings.ToLower(name), Extension) {
		name = name[:len(name)-len(Extension)]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func readInfo(bundlePath string) (*Info, error) {
	path := filepath.Join(bundlePath, "Contents", "Info.plist")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: missing Info.plist at %s", ErrNotBundle, path)
		}
		return nil, fmt.Errorf("open Info.plist: %w", err)
	}
	defer f.Close()

	var info Info
	if err := plist.NewDecoder(f).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &info, nil
}
