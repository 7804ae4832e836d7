package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultIconFile is tried when Info.plist declares no usable icon.
const DefaultIconFile = "AppIcon.icns"

const iconExt = ".icns"

// Icon is an icon resource read from a bundle.
type Icon struct {
	Path    string // Absolute path of the resource
	RelPath string // Path relative to the bundle root
	Data    []byte
	Format  string // Detected MIME type; the bytes are never recoded
}

// IconCandidates returns the icon names declared in Info.plist, in lookup
// order, without duplicates.
func (i *Info) IconCandidates() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	add(i.IconFile)
	for _, name := range stringList(i.IconFiles) {
		add(name)
	}
	if icons, ok := i.Icons.(map[string]any); ok {
		if primary, ok := icons["CFBundlePrimaryIcon"].(map[string]any); ok {
			for _, name := range stringList(primary["CFBundleIconFiles"]) {
				add(name)
			}
		}
	}
	add(i.IconName)

	return out
}

// LocateIcon returns the absolute path of the bundle's icon resource.
func (b *Bundle) LocateIcon() (string, error) {
	resources := b.ResourcesDir()

	candidates := append(b.Info.IconCandidates(), DefaultIconFile)
	for _, name := range candidates {
		if filepath.Ext(name) == "" {
			name += iconExt
		}
		path := filepath.Join(resources, name)
		if !within(resources, path) {
			continue
		}
		if isFile(path) {
			return path, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(resources, "*"+iconExt))
	if err != nil {
		return "", fmt.Errorf("glob icons: %w", err)
	}
	sort.Strings(matches)
	for _, path := range matches {
		if isFile(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrMissingIcon, b.Path)
}

// ReadIcon locates the icon resource and returns its bytes.
func (b *Bundle) ReadIcon() (*Icon, error) {
	path, err := b.LocateIcon()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}

	rel, err := filepath.Rel(b.Path, path)
	if err != nil {
		return nil, fmt.Errorf("relative icon path: %w", err)
	}

	return &Icon{
		Path:    path,
		RelPath: rel,
		Data:    data,
		Format:  DetectFormat(data),
	}, nil
}

// WriteIcon replaces the resource at relPath (relative to the bundle root)
// with data. The write goes through a temporary file in the same directory so
// a failure leaves the old icon in place. An existing file keeps its mode.
func (b *Bundle) WriteIcon(relPath string, data []byte) (string, error) {
	if relPath == "" || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("invalid icon path %q", relPath)
	}
	target := filepath.Join(b.Path, relPath)
	if !within(b.Path, target) {
		return "", fmt.Errorf("icon path %q escapes bundle", relPath)
	}

	mode := os.FileMode(0o644)
	if st, err := os.Stat(target); err == nil {
		mode = st.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat icon: %w", err)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create resources directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".iconkeep-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write icon: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return "", fmt.Errorf("chmod icon: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("rename icon: %w", err)
	}
	tmpPath = ""

	return target, nil
}

// DetectFormat returns the MIME type of icon data.
func DetectFormat(data []byte) string {
	return mimetype.Detect(data).String()
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// within reports whether path is root or lies beneath it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
