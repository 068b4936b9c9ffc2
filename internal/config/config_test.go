package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default("user-1", "Sam")
	assert.Equal(t, "user-1", cfg.User.ID)
	assert.Equal(t, "data/perkwise.db", cfg.Store.Path)
	assert.Equal(t, "chase", cfg.Import.Format)
	assert.Equal(t, 500, cfg.Scan.BatchLimit)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default("user-1", "Sam")
	cfg.Scan.BatchLimit = 50
	cfg.Log.Level = "debug"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
