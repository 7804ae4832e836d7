package store

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New("/tmp/backups")

	require.NotNil(t, s)
	assert.Equal(t, "/tmp/backups", s.Root())
	assert.Equal(t, "/tmp/backups/com.apple.Safari/manifest.json", s.ManifestPath("com.apple.Safari"))
}

func TestStore_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("writes icon and manifest", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "backups"))

		rec, err := s.Put(ctx, "com.apple.Safari", Record{
			AppPath:     "/Applications/Safari.app",
			BundleID:    "com.apple.Safari",
			DisplayName: "Safari",
			IconRelPath: "Contents/Resources/AppIcon.icns",
			Format:      "image/x-icns",
		}, []byte("icon-bytes"))
		require.NoError(t, err)

		assert.Equal(t, "com.apple.Safari", rec.Key)
		assert.Equal(t, filepath.Join(s.Root(), "com.apple.Safari", "icon.icns"), rec.BackupPath)
		assert.Equal(t, int64(10), rec.Size)
		assert.Len(t, rec.SHA256, 64)
		assert.False(t, rec.Timestamp.IsZero())

		data, err := os.ReadFile(rec.BackupPath)
		require.NoError(t, err)
		assert.Equal(t, "icon-bytes", string(data))
		assert.FileExists(t, s.ManifestPath("com.apple.Safari"))
	})

	t.Run("second put overwrites", func(t *testing.T) {
		s := New(t.TempDir())

		_, err := s.Put(ctx, "safari", Record{IconRelPath: "AppIcon.icns"}, []byte("first"))
		require.NoError(t, err)
		_, err = s.Put(ctx, "safari", Record{IconRelPath: "AppIcon.icns"}, []byte("second"))
		require.NoError(t, err)

		entries, err := os.ReadDir(s.EntryDir("safari"))
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.ElementsMatch(t, []string{"icon.icns", "manifest.json"}, names)

		records, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)

		_, data, err := s.Get(ctx, "safari")
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("extension change removes stale icon", func(t *testing.T) {
		s := New(t.TempDir())

		_, err := s.Put(ctx, "app", Record{IconRelPath: "Contents/Resources/icon.icns"}, []byte("icns"))
		require.NoError(t, err)
		rec, err := s.Put(ctx, "app", Record{IconRelPath: "Contents/Resources/icon.png"}, []byte("png"))
		require.NoError(t, err)

		assert.Equal(t, "icon.png", filepath.Base(rec.BackupPath))
		assert.NoFileExists(t, filepath.Join(s.EntryDir("app"), "icon.icns"))
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		s := New(t.TempDir())

		_, err := s.Put(ctx, "../escape", Record{}, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("first matching key wins", func(t *testing.T) {
		s := New(t.TempDir())
		_, err := s.Put(ctx, "safari", Record{DisplayName: "Safari"}, []byte("by-name"))
		require.NoError(t, err)

		rec, data, err := s.Get(ctx, "com.apple.Safari", "", "safari")
		require.NoError(t, err)
		assert.Equal(t, "safari", rec.Key)
		assert.Equal(t, "Safari", rec.DisplayName)
		assert.Equal(t, "by-name", string(data))
	})

	t.Run("not found", func(t *testing.T) {
		s := New(t.TempDir())

		_, _, err := s.Get(ctx, "com.apple.Safari", "safari")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "com.apple.Safari")
	})

	t.Run("missing root is not found", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "missing"))

		_, _, err := s.Get(ctx, "safari")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("tampered icon is corrupt", func(t *testing.T) {
		s := New(t.TempDir())
		rec, err := s.Put(ctx, "safari", Record{}, []byte("original"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(rec.BackupPath, []byte("tampered"), 0o644))

		_, _, err = s.Get(ctx, "safari")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("missing icon is corrupt", func(t *testing.T) {
		s := New(t.TempDir())
		rec, err := s.Put(ctx, "safari", Record{}, []byte("original"))
		require.NoError(t, err)
		require.NoError(t, os.Remove(rec.BackupPath))

		_, _, err = s.Get(ctx, "safari")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("invalid manifest is corrupt", func(t *testing.T) {
		s := New(t.TempDir())
		require.NoError(t, os.MkdirAll(s.EntryDir("safari"), 0o755))
		require.NoError(t, os.WriteFile(s.ManifestPath("safari"), []byte("{"), 0o644))

		_, _, err := s.Get(ctx, "safari")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("relocated root", func(t *testing.T) {
		parent := t.TempDir()
		s := New(filepath.Join(parent, "old"))
		_, err := s.Put(ctx, "safari", Record{}, []byte("icon"))
		require.NoError(t, err)
		require.NoError(t, os.Rename(filepath.Join(parent, "old"), filepath.Join(parent, "new")))

		moved := New(filepath.Join(parent, "new"))
		rec, data, err := moved.Get(ctx, "safari")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(parent, "new", "safari", "icon.icns"), rec.BackupPath)
		assert.Equal(t, "icon", string(data))
	})
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()

	t.Run("sorted by key", func(t *testing.T) {
		s := New(t.TempDir())
		for _, key := range []string{"zed", "alpha", "mid"} {
			_, err := s.Put(ctx, key, Record{DisplayName: key}, []byte(key))
			require.NoError(t, err)
		}
		require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "junk"), 0o755))

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "alpha", records[0].Key)
		assert.Equal(t, "mid", records[1].Key)
		assert.Equal(t, "zed", records[2].Key)
	})

	t.Run("missing root is empty", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "missing"))

		records, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("removes backup", func(t *testing.T) {
		s := New(t.TempDir())
		_, err := s.Put(ctx, "safari", Record{}, []byte("icon"))
		require.NoError(t, err)

		require.NoError(t, s.Remove(ctx, "safari"))
		assert.NoDirExists(t, s.EntryDir("safari"))

		_, _, err = s.Get(ctx, "safari")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing backup", func(t *testing.T) {
		s := New(t.TempDir())

		err := s.Remove(ctx, "safari")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_LockTimeoutHonorsContext(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, os.MkdirAll(s.Root(), 0o755))

	holder, err := os.OpenFile(filepath.Join(s.Root(), lockFileName), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer holder.Close()
	require.NoError(t, syscall.Flock(int(holder.Fd()), syscall.LOCK_EX))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = s.Put(ctx, "safari", Record{}, []byte("icon"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidateKey(t *testing.T) {
	valid := []string{"com.apple.Safari", "google chrome", "safari"}
	for _, key := range valid {
		assert.NoError(t, ValidateKey(key), key)
	}

	invalid := []string{"", ".", "..", "a/b", `a\b`, ".lock", "x\x00y"}
	for _, key := range invalid {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}
