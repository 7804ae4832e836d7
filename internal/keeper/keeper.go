// Package keeper implements the backup and restore operations on top of the
// bundle resolver and the backup store.
package keeper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmgilman/iconkeep/internal/bundle"
	"github.com/jmgilman/iconkeep/internal/slogger"
	"github.com/jmgilman/iconkeep/internal/store"
)

// appResolver is the internal interface for resolving app references.
type appResolver interface {
	Resolve(ctx context.Context, ref string) (*bundle.Bundle, error)
}

// backupStore is the internal interface for backup storage.
type backupStore interface {
	Put(ctx context.Context, key string, rec store.Record, data []byte) (*store.Record, error)
	Get(ctx context.Context, keys ...string) (*store.Record, []byte, error)
	List(ctx context.Context) ([]store.Record, error)
	Remove(ctx context.Context, key string) error
}

// dockRefresher is the internal interface for redrawing the Dock.
type dockRefresher interface {
	Refresh(ctx context.Context) error
}

// Config configures a Keeper.
type Config struct {
	// SkipMarker leaves the Finder custom icon flag untouched on restore.
	SkipMarker bool

	// RefreshDock restarts the Dock after a restore. Requires a refresher.
	RefreshDock bool
}

// Keeper backs up and restores app icons.
type Keeper struct {
	resolver appResolver
	store    backupStore
	dock     dockRefresher
	cfg      Config
}

// New creates a Keeper. dock may be nil when Dock refreshes are not wanted.
func New(resolver appResolver, st backupStore, dock dockRefresher, cfg Config) *Keeper {
	return &Keeper{
		resolver: resolver,
		store:    st,
		dock:     dock,
		cfg:      cfg,
	}
}

// RestoreResult describes an applied restore.
type RestoreResult struct {
	Record   *store.Record
	IconPath string // Path the icon was written to inside the bundle
	Marked   bool   // Whether the custom icon flag was set
}

// Key returns the backup key for a bundle: its bundle identifier, or its
// normalized name when it has none.
func Key(b *bundle.Bundle) string {
	if b.Info.Identifier != "" {
		return b.Info.Identifier
	}
	return bundle.NormalizeName(b.Stem())
}

// lookupKeys lists the keys a backup of b may be stored under, most specific
// first.
func lookupKeys(b *bundle.Bundle, ref string) []string {
	keys := []string{b.Info.Identifier, bundle.NormalizeName(b.Stem())}
	if name := bundle.NormalizeName(filepath.Base(ref)); name != "" {
		keys = append(keys, name)
	}

	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Backup copies the icon of the app named by ref into the store, replacing
// any earlier backup of the same app.
func (k *Keeper) Backup(ctx context.Context, ref string) (*store.Record, error) {
	log := slogger.L(ctx)

	b, err := k.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved app", "ref", ref, "path", b.Path)

	icon, err := b.ReadIcon()
	if err != nil {
		return nil, err
	}
	log.Debug("located icon", "path", icon.Path, "format", icon.Format, "bytes", len(icon.Data))

	rec, err := k.store.Put(ctx, Key(b), store.Record{
		AppPath:     b.Path,
		BundleID:    b.Info.Identifier,
		DisplayName: b.DisplayName(),
		IconRelPath: icon.RelPath,
		Format:      icon.Format,
	}, icon.Data)
	if err != nil {
		return nil, fmt.Errorf("store backup: %w", err)
	}

	log.Info("backed up icon", "app", rec.DisplayName, "key", rec.Key, "backup", rec.BackupPath)
	return rec, nil
}

// Restore writes the backed up icon of the app named by ref back into its
// bundle and flags the bundle as having a custom icon. The bundle is not
// touched unless a backup is found.
func (k *Keeper) Restore(ctx context.Context, ref string) (*RestoreResult, error) {
	log := slogger.L(ctx)

	b, err := k.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved app", "ref", ref, "path", b.Path)

	rec, data, err := k.store.Get(ctx, lookupKeys(b, ref)...)
	if err != nil {
		return nil, err
	}

	relPath := rec.IconRelPath
	if relPath == "" {
		// Older manifests may lack the path; fall back to the current icon.
		current, lerr := b.LocateIcon()
		if lerr != nil {
			return nil, lerr
		}
		if relPath, err = filepath.Rel(b.Path, current); err != nil {
			return nil, fmt.Errorf("relative icon path: %w", err)
		}
	}

	iconPath, err := b.WriteIcon(relPath, data)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{Record: rec, IconPath: iconPath}

	if !k.cfg.SkipMarker {
		switch err := b.MarkCustomIcon(); {
		case err == nil:
			result.Marked = true
		case errors.Is(err, bundle.ErrUnsupportedPlatform):
			log.Debug("custom icon flag not set", "reason", err)
		default:
			return nil, fmt.Errorf("mark custom icon: %w", err)
		}
	}

	log.Info("restored icon", "app", rec.DisplayName, "icon", iconPath, "marked", result.Marked)
	return result, nil
}

// RefreshDock restarts the Dock if configured to. Failures are logged, not
// returned, since the icon itself has already been restored.
func (k *Keeper) RefreshDock(ctx context.Context) {
	if !k.cfg.RefreshDock || k.dock == nil {
		return
	}
	if err := k.dock.Refresh(ctx); err != nil {
		slogger.L(ctx).Warn("failed to refresh Dock", "error", err)
	}
}

// List returns all stored backups.
func (k *Keeper) List(ctx context.Context) ([]store.Record, error) {
	records, err := k.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return records, nil
}

// Forget deletes the backup of the app named by ref and returns its key.
// When the app itself no longer resolves, ref is tried directly as a key so
// orphaned backups can still be removed.
func (k *Keeper) Forget(ctx context.Context, ref string) (string, error) {
	var keys []string
	if b, err := k.resolver.Resolve(ctx, ref); err == nil {
		keys = lookupKeys(b, ref)
	} else if errors.Is(err, bundle.ErrAppNotFound) {
		keys = []string{ref, bundle.NormalizeName(ref)}
	} else {
		return "", err
	}

	var tried []string
	for _, key := range keys {
		if store.ValidateKey(key) != nil {
			continue
		}
		tried = append(tried, key)

		err := k.store.Remove(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}

		slogger.L(ctx).Info("forgot backup", "key", key)
		return key, nil
	}

	return "", fmt.Errorf("%w: tried %s", store.ErrNotFound, strings.Join(tried, ", "))
}
