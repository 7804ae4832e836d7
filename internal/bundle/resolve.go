package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSearchDirs lists the directories searched for an app by name.
// A leading ~ is expanded against the user's home directory.
var DefaultSearchDirs = []string{
	"/Applications",
	"/System/Applications",
	"~/Applications",
}

// AmbiguousError reports a name that matched more than one bundle.
type AmbiguousError struct {
	Ref        string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %q matches %s", ErrAmbiguousApp, e.Ref, strings.Join(e.Candidates, ", "))
}

// Is makes errors.Is(err, ErrAmbiguousApp) hold.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguousApp
}

// Chooser picks one of several bundles that match ref.
type Chooser func(ref string, candidates []string) (string, error)

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	SearchDirs []string // Defaults to DefaultSearchDirs
	HomeDir    string   // Used for ~ expansion; defaults to os.UserHomeDir
	Chooser    Chooser  // Optional; without it ambiguous names fail
}

// Resolver turns application references into bundles.
type Resolver struct {
	searchDirs []string
	homeDir    string
	chooser    Chooser
}

// NewResolver creates a Resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	dirs := cfg.SearchDirs
	if len(dirs) == 0 {
		dirs = DefaultSearchDirs
	}
	home := cfg.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir() //nolint:errcheck // ~ stays unexpanded without a home
	}
	return &Resolver{
		searchDirs: dirs,
		homeDir:    home,
		chooser:    cfg.Chooser,
	}
}

// SearchDirs returns the expanded search directories.
func (r *Resolver) SearchDirs() []string {
	out := make([]string, len(r.searchDirs))
	for i, dir := range r.searchDirs {
		out[i] = r.expand(dir)
	}
	return out
}

// Resolve returns the bundle named by ref, which is either a path to (or
// into) a bundle or a display name looked up in the search directories.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Bundle, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty app reference", ErrAppNotFound)
	}

	if looksLikePath(ref) {
		return r.resolvePath(ref)
	}

	// A bare name that happens to exist relative to the working directory
	// is still treated as a path.
	if _, err := os.Stat(ref); err == nil && strings.EqualFold(filepath.Ext(ref), Extension) {
		return r.resolvePath(ref)
	}

	return r.resolveName(ctx, ref)
}

func (r *Resolver) resolvePath(ref string) (*Bundle, error) {
	abs, err := filepath.Abs(r.expand(ref))
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrAppNotFound, ref)
		}
		return nil, fmt.Errorf("stat %s: %w", ref, err)
	}

	for p := abs; ; p = filepath.Dir(p) {
		if strings.EqualFold(filepath.Ext(p), Extension) {
			return Open(p)
		}
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}

	return nil, fmt.Errorf("%w: %s is not inside an %s bundle", ErrNotBundle, ref, Extension)
}

func (r *Resolver) resolveName(ctx context.Context, ref string) (*Bundle, error) {
	target := NormalizeName(ref)
	dirs := r.SearchDirs()

	var matches []string
	seen := make(map[string]bool)

	for _, root := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if st, err := os.Stat(root); err != nil || !st.IsDir() {
			continue
		}
		walkRoot := root
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			walkRoot = resolved
		}

		// Unreadable subtrees are skipped rather than failing the lookup.
		_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error { //nolint:errcheck // callback never fails
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !isBundleEntry(path, d) {
				return nil
			}
			if NormalizeName(d.Name()) == target {
				key := path
				if resolved, rerr := filepath.EvalSymlinks(path); rerr == nil {
					key = resolved
				}
				if !seen[key] {
					seen[key] = true
					matches = append(matches, path)
				}
			}
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		})
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q (searched %s)", ErrAppNotFound, ref, strings.Join(dirs, ", "))
	case 1:
		return Open(matches[0])
	}

	sort.Strings(matches)
	if r.chooser == nil {
		return nil, &AmbiguousError{Ref: ref, Candidates: matches}
	}

	chosen, err := r.chooser(ref, matches)
	if err != nil {
		return nil, err
	}
	return Open(chosen)
}

func (r *Resolver) expand(path string) string {
	if r.homeDir == "" {
		return path
	}
	if path == "~" {
		return r.homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(r.homeDir, path[2:])
	}
	return path
}

// isBundleEntry reports whether a walked entry is an .app bundle. Symlinked
// bundles (common in ~/Applications) count when they point at a directory.
func isBundleEntry(path string, d fs.DirEntry) bool {
	if !strings.EqualFold(filepath.Ext(d.Name()), Extension) {
		return false
	}
	if d.IsDir() {
		return true
	}
	if d.Type()&fs.ModeSymlink != 0 {
		st, err := os.Stat(path)
		return err == nil && st.IsDir()
	}
	return false
}

func looksLikePath(ref string) bool {
	return strings.ContainsRune(ref, filepath.Separator) || strings.HasPrefix(ref, "~")
}
