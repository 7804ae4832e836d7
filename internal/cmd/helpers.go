package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/iconkeep/internal/applist"
	"github.com/jmgilman/iconkeep/internal/bundle"
	"github.com/jmgilman/iconkeep/internal/config"
	"github.com/jmgilman/iconkeep/internal/dock"
	"github.com/jmgilman/iconkeep/internal/exec"
	"github.com/jmgilman/iconkeep/internal/keeper"
	"github.com/jmgilman/iconkeep/internal/prompt"
	"github.com/jmgilman/iconkeep/internal/store"
)

// newKeeper wires a Keeper from cfg and the flags of the running command.
func newKeeper(cmd *cobra.Command, cfg *config.Config) *keeper.Keeper {
	resolver := bundle.NewResolver(bundle.ResolverConfig{
		SearchDirs: cfg.SearchDirs,
		Chooser:    chooser(cmd, cfg),
	})

	refresh := cfg.Restore.RefreshDock
	if v, err := cmd.Flags().GetBool("refresh-dock"); err == nil && v {
		refresh = true
	}

	return keeper.New(
		resolver,
		store.New(cfg.Storage.Backups),
		dock.NewRefresher(exec.New()),
		keeper.Config{
			SkipMarker:  !cfg.Restore.MarkCustomIcon,
			RefreshDock: refresh,
		},
	)
}

// chooser returns an interactive picker for ambiguous names, or nil when
// prompting is off or there is no terminal to prompt on.
func chooser(cmd *cobra.Command, cfg *config.Config) bundle.Chooser {
	pick, _ := cmd.Flags().GetBool("pick") //nolint:errcheck // persistent flag is always defined
	if !pick && !cfg.Interactive {
		return nil
	}
	if !isInteractive() {
		return nil
	}

	p := prompt.New()
	return func(ref string, candidates []string) (string, error) {
		return prompt.ChooseApp(p, ref, candidates)
	}
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func requireKeeper(ctx context.Context) (*keeper.Keeper, error) {
	k := KeeperFromContext(ctx)
	if k == nil {
		return nil, errors.New("keeper not initialized")
	}
	return k, nil
}

// batchRefs reads the app list used when no app argument is given.
func batchRefs(ctx context.Context) ([]string, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}

	refs, err := applist.Load(cfg.Storage.AppList)
	if err != nil {
		return nil, fmt.Errorf("no app given and %w", err)
	}
	return refs, nil
}
