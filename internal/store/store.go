// Package store persists icon backups under the backup root, one directory
// per app holding the icon bytes and a JSON manifest.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

const (
	lockTimeout  = 5 * time.Second
	lockFileName = ".lock"
	manifestName = "manifest.json"
	iconBaseName = "icon"
	fileMode     = 0o644
	dirMode      = 0o755
)

// Sentinel errors for store operations.
var (
	ErrNotFound    = errors.New("backup not found")
	ErrCorrupt     = errors.New("backup is corrupt")
	ErrInvalidKey  = errors.New("invalid backup key")
	ErrLockTimeout = errors.New("failed to acquire backup store lock")
)

// Record is the manifest stored next to each backed up icon.
type Record struct {
	Key         string    `json:"key"`
	AppPath     string    `json:"app_path"`
	BundleID    string    `json:"bundle_id,omitempty"`
	DisplayName string    `json:"display_name"`
	IconRelPath string    `json:"icon_relpath"` // Icon location relative to the bundle root
	BackupPath  string    `json:"backup_path"`
	Format      string    `json:"format"`
	Size        int64     `json:"size"`
	SHA256      string    `json:"sha256"`
	Timestamp   time.Time `json:"timestamp"`
}

// Store is a directory of icon backups.
type Store struct {
	root string
}

// New creates a Store rooted at root. Nothing is created until the first
// write.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the backup root directory.
func (s *Store) Root() string {
	return s.root
}

// EntryDir returns the directory holding the backup for key.
func (s *Store) EntryDir(key string) string {
	return filepath.Join(s.root, key)
}

// ManifestPath returns the manifest path for key.
func (s *Store) ManifestPath(key string) string {
	return filepath.Join(s.root, key, manifestName)
}

// Put stores data as the icon backup for key, replacing any previous backup.
// The icon file keeps the extension of rec.IconRelPath. The returned record
// has its key, backup path, size and checksum filled in.
func (s *Store) Put(ctx context.Context, key string, rec Record, data []byte) (*Record, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var out *Record
	err := s.withLock(ctx, func() error {
		dir := s.EntryDir(key)
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}

		iconPath := filepath.Join(dir, iconBaseName+iconExt(rec.IconRelPath))
		if err := atomicWrite(iconPath, data); err != nil {
			return fmt.Errorf("write icon backup: %w", err)
		}
		if err := removeStaleIcons(dir, filepath.Base(iconPath)); err != nil {
			return err
		}

		sum := sha256.Sum256(data)
		rec.Key = key
		rec.BackupPath = iconPath
		rec.Size = int64(len(data))
		rec.SHA256 = hex.EncodeToString(sum[:])
		if rec.Timestamp.IsZero() {
			rec.Timestamp = time.Now().UTC()
		}

		manifest, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		if err := atomicWrite(s.ManifestPath(key), append(manifest, '\n')); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}

		out = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the backup stored under the first of keys that has one, along
// with the icon bytes. Empty and invalid keys are skipped. It returns
// ErrNotFound if none match and ErrCorrupt if the icon does not match its
// manifest.
func (s *Store) Get(ctx context.Context, keys ...string) (*Record, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	for _, key := range keys {
		if ValidateKey(key) != nil {
			continue
		}

		rec, err := s.readManifest(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		data, err := os.ReadFile(rec.BackupPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil, fmt.Errorf("%w: icon missing at %s", ErrCorrupt, rec.BackupPath)
			}
			return nil, nil, fmt.Errorf("read icon backup: %w", err)
		}
		if rec.SHA256 != "" {
			sum := sha256.Sum256(data)
			if hex.EncodeToString(sum[:]) != rec.SHA256 {
				return nil, nil, fmt.Errorf("%w: checksum mismatch for %s", ErrCorrupt, rec.BackupPath)
			}
		}

		return rec, data, nil
	}

	return nil, nil, fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(nonEmpty(keys), ", "))
}

// List returns all backups sorted by key. Directories without a readable
// manifest are skipped.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.readManifest(entry.Name())
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

// Remove deletes the backup for key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	return s.withLock(ctx, func() error {
		dir := s.EntryDir(key)
		if _, err := os.Stat(s.ManifestPath(key)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNotFound, key)
			}
			return fmt.Errorf("stat manifest: %w", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove backup: %w", err)
		}
		return nil
	})
}

// ValidateKey checks that key names a single directory under the root.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.ContainsAny(key, `/\`), strings.ContainsRune(key, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	case strings.HasPrefix(key, "."):
		return fmt.Errorf("%w: %q is hidden", ErrInvalidKey, key)
	}
	return nil
}

func (s *Store) readManifest(key string) (*Record, error) {
	data, err := os.ReadFile(s.ManifestPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode manifest %s: %v", ErrCorrupt, s.ManifestPath(key), err)
	}
	if rec.Key == "" {
		rec.Key = key
	}
	// The backup root may have moved since the manifest was written.
	if rec.BackupPath == "" {
		rec.BackupPath = filepath.Join(s.EntryDir(key), iconBaseName+iconExt(rec.IconRelPath))
	} else if filepath.Dir(rec.BackupPath) != s.EntryDir(key) {
		rec.BackupPath = filepath.Join(s.EntryDir(key), filepath.Base(rec.BackupPath))
	}
	return &rec, nil
}

// withLock runs fn while holding an exclusive lock on the store.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.root, dirMode); err != nil {
		return fmt.Errorf("create backup root: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(s.root, lockFileName), os.O_RDWR|os.O_CREATE, fileMode)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer file.Close()

	if err := acquireLock(ctx, file); err != nil {
		return err
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN) //nolint:errcheck // closing the file releases it anyway

	return fn()
}

// acquireLock takes an exclusive flock, polling until lockTimeout.
func acquireLock(ctx context.Context, file *os.File) error {
	deadline := time.Now().Add(lockTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			return fmt.Errorf("acquire file lock: %w", err)
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		time.Sleep(10 * time.Millisecond)
	}
}

// atomicWrite writes data to path via a temporary file and rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	tmpPath = ""
	return nil
}

// removeStaleIcons deletes icon files left by an earlier backup that used a
// different extension.
func removeStaleIcons(dir, keep string) error {
	matches, err := filepath.Glob(filepath.Join(dir, iconBaseName+"*"))
	if err != nil {
		return fmt.Errorf("glob icons: %w", err)
	}
	for _, path := range matches {
		if filepath.Base(path) == keep {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale icon: %w", err)
		}
	}
	return nil
}

func iconExt(relPath string) string {
	ext := strings.ToLower(filepath.Ext(relPath))
	if ext == "" {
		return ".icns"
	}
	return ext
}

func nonEmpty(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
