//go:build !darwin

package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_MarkCustomIcon_Unsupported(t *testing.T) {
	path := makeBundle(t, t.TempDir(), "App", nil, nil)
	b, err := Open(path)
	require.NoError(t, err)

	assert.ErrorIs(t, b.MarkCustomIcon(), ErrUnsupportedPlatform)

	_, err = b.HasCustomIcon()
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}
