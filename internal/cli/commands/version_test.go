package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitest "github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/internal/cli/testutil"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		args    []string
		wantOut []string
		exact   string
	}{
		{
			name:    "full",
			version: "0.1.0",
			wantOut: []string{"sqliteweb v0.1.0", "SQLite 3.", "modernc.org/sqlite", "go1"},
		},
		{
			name:    "dev version",
			version: "dev",
			wantOut: []string{"sqliteweb vdev"},
		},
		{
			name:    "short",
			version: "1.2.3",
			args:    []string{"--short"},
			exact:   "1.2.3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := clitest.Execute(t.Context(), NewVersionCommand(tt.version), "", tt.args...)
			require.NoError(t, res.Err)

			if tt.exact != "" {
				assert.Equal(t, tt.exact, res.Stdout)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, res.Stdout, want)
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("test")

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup("short"))
}
