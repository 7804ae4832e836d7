package cmd

import (
	"context"

	"github.com/jmgilman/iconkeep/internal/config"
	"github.com/jmgilman/iconkeep/internal/keeper"
)

type contextKey string

const (
	configKey contextKey = "config"
	loaderKey contextKey = "loader"
	keeperKey contextKey = "keeper"
)

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

// WithKeeper adds the keeper to the context.
func WithKeeper(ctx context.Context, k *keeper.Keeper) context.Context {
	return context.WithValue(ctx, keeperKey, k)
}

// KeeperFromContext retrieves the keeper from context.
func KeeperFromContext(ctx context.Context) *keeper.Keeper {
	k, ok := ctx.Value(keeperKey).(*keeper.Keeper)
	if !ok {
		return nil
	}
	return k
}
