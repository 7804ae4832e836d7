// Package config loads iconkeep configuration from defaults, an optional YAML
// file and ICONKEEP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/jmgilman/iconkeep/internal/bundle"
)

// AppName names the per-user directories under each XDG base directory.
const AppName = "iconkeep"

// File names inside the config directory.
const (
	ConfigFileName  = "config.yaml"
	AppListFileName = "apps"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey = errors.New("invalid configuration key")
	ErrNoHome     = errors.New("cannot determine home directory")
)

var validKeys = buildValidKeys()

var validate = validator.New()

// Config is the effective iconkeep configuration.
type Config struct {
	SearchDirs  []string      `mapstructure:"search_dirs" yaml:"search_dirs" validate:"required,min=1,dive,required"`
	Storage     StorageConfig `mapstructure:"storage" yaml:"storage" validate:"required"`
	Restore     RestoreConfig `mapstructure:"restore" yaml:"restore"`
	Interactive bool          `mapstructure:"interactive" yaml:"interactive"`
}

// StorageConfig holds file locations.
type StorageConfig struct {
	Backups string `mapstructure:"backups" yaml:"backups" validate:"required"`
	AppList string `mapstructure:"app_list" yaml:"app_list" validate:"required"`
	Cache   string `mapstructure:"cache" yaml:"cache"`
	State   string `mapstructure:"state" yaml:"state"`
}

// RestoreConfig tunes restores.
type RestoreConfig struct {
	RefreshDock    bool `mapstructure:"refresh_dock" yaml:"refresh_dock"`
	MarkCustomIcon bool `mapstructure:"mark_custom_icon" yaml:"mark_custom_icon"`
}

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Dirs are the XDG base directories, already joined with AppName.
type Dirs struct {
	Config string
	Data   string
	Cache  string
	State  string
}

// ResolveDirs computes the iconkeep base directories from the XDG_*
// environment variables, falling back to the XDG defaults under home.
// Relative XDG values are ignored.
func ResolveDirs(home string) Dirs {
	base := func(env, fallback string) string {
		if dir := os.Getenv(env); dir != "" && filepath.IsAbs(dir) {
			return filepath.Join(dir, AppName)
		}
		return filepath.Join(home, fallback, AppName)
	}

	return Dirs{
		Config: base("XDG_CONFIG_HOME", ".config"),
		Data:   base("XDG_DATA_HOME", filepath.Join(".local", "share")),
		Cache:  base("XDG_CACHE_HOME", ".cache"),
		State:  base("XDG_STATE_HOME", filepath.Join(".local", "state")),
	}
}

// Loader reads configuration.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
	dirs    Dirs
}

// NewLoader creates a loader for the current user.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil, fmt.Errorf("%w: %v", ErrNoHome, err)
	}

	dirs := ResolveDirs(home)
	configPath := filepath.Join(dirs.Config, ConfigFileName)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ICONKEEP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("search_dirs", "ICONKEEP_SEARCH_DIRS")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.backups", "ICONKEEP_BACKUP_DIR")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("storage.app_list", "ICONKEEP_APP_LIST")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("restore.refresh_dock", "ICONKEEP_REFRESH_DOCK")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("interactive", "ICONKEEP_INTERACTIVE")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
		dirs:    dirs,
	}
	l.setDefaults()

	return l, nil
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("search_dirs", bundle.DefaultSearchDirs)
	l.v.SetDefault("storage.backups", filepath.Join(l.dirs.Data, "backups"))
	l.v.SetDefault("storage.app_list", filepath.Join(l.dirs.Config, AppListFileName))
	l.v.SetDefault("storage.cache", l.dirs.Cache)
	l.v.SetDefault("storage.state", l.dirs.State)
	l.v.SetDefault("restore.refresh_dock", false)
	l.v.SetDefault("restore.mark_custom_icon", true)
	l.v.SetDefault("interactive", false)
}

// Load returns the effective configuration. The config file is optional and
// never created.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); err == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	for i, dir := range cfg.SearchDirs {
		cfg.SearchDirs[i] = l.expandPath(strings.TrimSpace(dir))
	}
	cfg.Storage.Backups = l.expandPath(cfg.Storage.Backups)
	cfg.Storage.AppList = l.expandPath(cfg.Storage.AppList)
	cfg.Storage.Cache = l.expandPath(cfg.Storage.Cache)
	cfg.Storage.State = l.expandPath(cfg.Storage.State)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the configuration file path, whether or not it exists.
func (l *Loader) Path() string {
	return l.path
}

// Dirs returns the base directories the defaults were derived from.
func (l *Loader) Dirs() Dirs {
	return l.dirs
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// expandPath replaces a leading ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks that key names a configuration field.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// Keys returns every valid configuration key.
func Keys() []string {
	keys := make([]string, 0, len(validKeys))
	addKeysFromType(reflect.TypeOf(Config{}), "", func(k string) { keys = append(keys, k) })
	return keys
}

func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", func(k string) { keys[k] = true })
	return keys
}

func addKeysFromType(t reflect.Type, prefix string, add func(string)) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		add(key)

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, add)
		}
	}
}
