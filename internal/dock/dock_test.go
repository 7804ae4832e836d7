package dock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/iconkeep/internal/exec"
	"github.com/jmgilman/iconkeep/internal/exec/mocks"
)

func TestRefresher_Refresh(t *testing.T) {
	ctx := context.Background()
	lookPath := func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}

	t.Run("kills Dock", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			LookPathFunc: lookPath,
			RunFunc: func(ctx context.Context, opts *exec.RunOptions) (*exec.Result, error) {
				assert.Equal(t, "/usr/bin/killall", opts.Name)
				assert.Equal(t, []string{"Dock"}, opts.Args)
				assert.Equal(t, refreshTimeout, opts.Timeout)
				return &exec.Result{}, nil
			},
		}

		require.NoError(t, NewRefresher(mockExec).Refresh(ctx))
		assert.Len(t, mockExec.RunCalls(), 1)
	})

	t.Run("Dock not running", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			LookPathFunc: lookPath,
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{
					Stderr:   []byte("No matching processes belonging to you were found\n"),
					ExitCode: 1,
				}, errors.New("exit status 1")
			},
		}

		assert.NoError(t, NewRefresher(mockExec).Refresh(ctx))
	})

	t.Run("other failure", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			LookPathFunc: lookPath,
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{Stderr: []byte("permission denied"), ExitCode: 1}, errors.New("exit status 1")
			},
		}

		err := NewRefresher(mockExec).Refresh(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("killall missing", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			LookPathFunc: func(string) (string, error) {
				return "", errors.New("not found")
			},
		}

		err := NewRefresher(mockExec).Refresh(ctx)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Empty(t, mockExec.RunCalls())
	})
}
