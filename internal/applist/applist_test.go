package applist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "comments and blank lines skipped",
			input: "Safari\n# comment\n\n/Applications/Mail.app\n",
			want:  []string{"Safari", "/Applications/Mail.app"},
		},
		{
			name:  "whitespace trimmed",
			input: "  Google Chrome  \n\t# indented comment\n   \nNotes",
			want:  []string{"Google Chrome", "Notes"},
		},
		{
			name:  "crlf line endings",
			input: "Safari\r\nMail\r\n",
			want:  []string{"Safari", "Mail"},
		},
		{
			name:  "order preserved with duplicates",
			input: "b\na\nb\n",
			want:  []string{"b", "a", "b"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("reads file without modifying it", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "apps")
		content := "Safari\n# comment\n\n/Applications/Mail.app\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		apps, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Safari", "/Applications/Mail.app"}, apps)

		after, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(after))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "apps"))
		assert.ErrorIs(t, err, ErrMissing)
	})

	t.Run("only comments", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "apps")
		require.NoError(t, os.WriteFile(path, []byte("# nothing\n\n"), 0o644))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrEmpty)
	})
}
