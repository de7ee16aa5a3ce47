package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pokedex/pkg/config"
)

func TestBuildFlagsOnlyChanged(t *testing.T) {
	require.NoError(t, buildCmd.Flags().Parse([]string{"--variant", "grouped", "--max-id", "151", "--no-silhouettes"}))

	assert.Equal(t, map[string]interface{}{
		"variant":     "grouped",
		"max-id":      151,
		"silhouettes": false,
	}, buildFlags(buildCmd))
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokedex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0644))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}
