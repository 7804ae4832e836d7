package keeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmgilman/iconkeep/internal/bundle"
	"github.com/jmgilman/iconkeep/internal/slogger"
	"github.com/jmgilman/iconkeep/internal/store"
)

// ErrBatchFailed is returned when at least one app in a batch failed.
var ErrBatchFailed = errors.New("batch had failures")

// Operation selects what a batch does to each app.
type Operation string

const (
	OpBackup  Operation = "backup"
	OpRestore Operation = "restore"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindAppNotFound    Kind = "app-not-found"
	KindAmbiguousApp   Kind = "ambiguous-app"
	KindNotBundle      Kind = "not-a-bundle"
	KindMissingIcon    Kind = "missing-icon"
	KindBackupNotFound Kind = "backup-not-found"
	KindCorruptBackup  Kind = "corrupt-backup"
	KindFileSystem     Kind = "filesystem"
	KindOther          Kind = "other"
)

// Classify maps err to the failure kind reported to the user.
func Classify(err error) Kind {
	var (
		pathErr *fs.PathError
		linkErr *os.LinkError
		sysErr  *os.SyscallError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, bundle.ErrAppNotFound):
		return KindAppNotFound
	case errors.Is(err, bundle.ErrAmbiguousApp):
		return KindAmbiguousApp
	case errors.Is(err, bundle.ErrNotBundle):
		return KindNotBundle
	case errors.Is(err, bundle.ErrMissingIcon):
		return KindMissingIcon
	case errors.Is(err, store.ErrNotFound):
		return KindBackupNotFound
	case errors.Is(err, store.ErrCorrupt):
		return KindCorruptBackup
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.As(err, &sysErr):
		return KindFileSystem
	default:
		return KindOther
	}
}

// Result is the outcome of one app in a batch.
type Result struct {
	Ref  string
	Path string // Backup path for OpBackup, applied icon path for OpRestore
	Err  error
}

// BatchReport collects the results of a batch, in input order.
type BatchReport struct {
	Op      Operation
	Results []Result
}

// Failed returns the results that ended in an error.
func (r *BatchReport) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Succeeded returns the number of apps processed without error.
func (r *BatchReport) Succeeded() int {
	return len(r.Results) - len(r.Failed())
}

// Err returns ErrBatchFailed wrapped with a count if any app failed.
func (r *BatchReport) Err() error {
	failed := len(r.Failed())
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d apps failed", ErrBatchFailed, failed, len(r.Results))
}

// RunBatch applies op to each ref in order. A failure is logged and recorded
// but does not stop the remaining apps. Cancellation of ctx stops the batch;
// the apps not reached are recorded with the context error.
func (k *Keeper) RunBatch(ctx context.Context, op Operation, refs []string) *BatchReport {
	log := slogger.L(ctx)
	report := &BatchReport{Op: op, Results: make([]Result, 0, len(refs))}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			report.Results = append(report.Results, Result{Ref: ref, Err: err})
			continue
		}

		res := Result{Ref: ref}
		switch op {
		case OpBackup:
			rec, err := k.Backup(ctx, ref)
			if err == nil {
				res.Path = rec.BackupPath
			}
			res.Err = err
		case OpRestore:
			restored, err := k.Restore(ctx, ref)
			if err == nil {
				res.Path = restored.IconPath
			}
			res.Err = err
		default:
			res.Err = fmt.Errorf("unknown operation %q", op)
		}

		if res.Err != nil {
			log.Warn(string(op)+" failed", "app", ref, "kind", Classify(res.Err), "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}

	return report
}
