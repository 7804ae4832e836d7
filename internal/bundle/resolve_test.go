package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ResolvePath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := makeBundle(t, dir, "Mail", map[string]any{"CFBundleIdentifier": "com.apple.mail"}, nil)
	r := NewResolver(ResolverConfig{SearchDirs: []string{t.TempDir()}, HomeDir: dir})

	t.Run("bundle path yields same path", func(t *testing.T) {
		b, err := r.Resolve(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("trailing slash", func(t *testing.T) {
		b, err := r.Resolve(ctx, path+string(filepath.Separator))
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("path inside bundle walks up", func(t *testing.T) {
		b, err := r.Resolve(ctx, filepath.Join(path, "Contents", "Info.plist"))
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("home relative path", func(t *testing.T) {
		b, err := r.Resolve(ctx, "~/Mail.app")
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := r.Resolve(ctx, filepath.Join(dir, "Missing.app"))
		assert.ErrorIs(t, err, ErrAppNotFound)
	})

	t.Run("path outside any bundle", func(t *testing.T) {
		_, err := r.Resolve(ctx, dir)
		assert.ErrorIs(t, err, ErrNotBundle)
	})
}

func TestResolver_ResolveName(t *testing.T) {
	ctx := context.Background()

	t.Run("case-insensitive match", func(t *testing.T) {
		apps := t.TempDir()
		path := makeBundle(t, apps, "Google Chrome", nil, nil)
		r := NewResolver(ResolverConfig{SearchDirs: []string{apps}})

		for _, ref := range []string{"google chrome", "Google Chrome.app", "GOOGLE CHROME"} {
			b, err := r.Resolve(ctx, ref)
			require.NoError(t, err, ref)
			assert.Equal(t, path, b.Path)
		}
	})

	t.Run("finds bundles in subdirectories", func(t *testing.T) {
		apps := t.TempDir()
		path := makeBundle(t, filepath.Join(apps, "Utilities"), "Terminal", nil, nil)
		r := NewResolver(ResolverConfig{SearchDirs: []string{apps}})

		b, err := r.Resolve(ctx, "Terminal")
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("does not descend into bundles", func(t *testing.T) {
		apps := t.TempDir()
		outer := makeBundle(t, apps, "Xcode", nil, nil)
		makeBundle(t, filepath.Join(outer, "Contents", "Applications"), "Simulator", nil, nil)
		r := NewResolver(ResolverConfig{SearchDirs: []string{apps}})

		_, err := r.Resolve(ctx, "Simulator")
		assert.ErrorIs(t, err, ErrAppNotFound)
	})

	t.Run("skips missing search directories", func(t *testing.T) {
		apps := t.TempDir()
		path := makeBundle(t, apps, "Notes", nil, nil)
		r := NewResolver(ResolverConfig{SearchDirs: []string{filepath.Join(apps, "nope"), apps}})

		b, err := r.Resolve(ctx, "Notes")
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("not found names the ref", func(t *testing.T) {
		r := NewResolver(ResolverConfig{SearchDirs: []string{t.TempDir()}})

		_, err := r.Resolve(ctx, "Photoshop")
		require.ErrorIs(t, err, ErrAppNotFound)
		assert.Contains(t, err.Error(), "Photoshop")
	})

	t.Run("empty ref", func(t *testing.T) {
		r := NewResolver(ResolverConfig{SearchDirs: []string{t.TempDir()}})

		_, err := r.Resolve(ctx, "  ")
		assert.ErrorIs(t, err, ErrAppNotFound)
	})

	t.Run("ambiguous across directories", func(t *testing.T) {
		first, second := t.TempDir(), t.TempDir()
		a := makeBundle(t, first, "Notes", nil, nil)
		b := makeBundle(t, second, "notes", nil, nil)
		r := NewResolver(ResolverConfig{SearchDirs: []string{first, second}})

		_, err := r.Resolve(ctx, "Notes")
		require.ErrorIs(t, err, ErrAmbiguousApp)

		var ambiguous *AmbiguousError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, "Notes", ambiguous.Ref)
		assert.ElementsMatch(t, []string{a, b}, ambiguous.Candidates)
	})

	t.Run("symlinked duplicate is not ambiguous", func(t *testing.T) {
		apps, links := t.TempDir(), t.TempDir()
		path := makeBundle(t, apps, "Notes", nil, nil)
		require.NoError(t, os.Symlink(path, filepath.Join(links, "Notes.app")))
		r := NewResolver(ResolverConfig{SearchDirs: []string{apps, links}})

		b, err := r.Resolve(ctx, "Notes")
		require.NoError(t, err)
		assert.Equal(t, path, b.Path)
	})

	t.Run("chooser resolves ambiguity", func(t *testing.T) {
		first, second := t.TempDir(), t.TempDir()
		makeBundle(t, first, "Notes", nil, nil)
		want := makeBundle(t, second, "Notes", nil, nil)

		var offered []string
		r := NewResolver(ResolverConfig{
			SearchDirs: []string{first, second},
			Chooser: func(ref string, candidates []string) (string, error) {
				offered = candidates
				return want, nil
			},
		})

		b, err := r.Resolve(ctx, "Notes")
		require.NoError(t, err)
		assert.Equal(t, want, b.Path)
		assert.Len(t, offered, 2)
	})

	t.Run("chooser error is returned", func(t *testing.T) {
		first, second := t.TempDir(), t.TempDir()
		makeBundle(t, first, "Notes", nil, nil)
		makeBundle(t, second, "Notes", nil, nil)
		canceled := errors.New("canceled")
		r := NewResolver(ResolverConfig{
			SearchDirs: []string{first, second},
			Chooser: func(string, []string) (string, error) {
				return "", canceled
			},
		})

		_, err := r.Resolve(ctx, "Notes")
		assert.ErrorIs(t, err, canceled)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := NewResolver(ResolverConfig{SearchDirs: []string{t.TempDir()}})

		_, err := r.Resolve(ctx, "Notes")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolver_SearchDirs(t *testing.T) {
	r := NewResolver(ResolverConfig{SearchDirs: []string{"/Applications", "~/Applications"}, HomeDir: "/Users/me"})

	assert.Equal(t, []string{"/Applications", "/Users/me/Applications"}, r.SearchDirs())
}
