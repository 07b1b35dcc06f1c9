package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isoview.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen = ":8080"
packs = ["packs/faithful", "packs/extra.zip"]
scale = 4.0
workers = 0
cache_db = "previews.db"
remote_worker = "ws://10.0.0.2:9999/ws/geometry"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Listen)
	require.Equal(t, []string{"packs/faithful", "packs/extra.zip"}, cfg.Packs)
	require.Equal(t, 4.0, cfg.Scale)
	require.Equal(t, 0, cfg.Workers)
	require.Equal(t, "previews.db", cfg.CacheDB)
	require.Equal(t, "ws://10.0.0.2:9999/ws/geometry", cfg.RemoteWorker)
	// untouched keys keep defaults
	require.Equal(t, "latest", cfg.MinecraftVersion)
	require.False(t, cfg.VerifyPacks)
}

func TestLoadErrors(t *testing.T) {
	for name, body := range map[string]string{
		"unknown key": `colour = "red"`,
		"bad scale":   `scale = -1.0`,
		"bad workers": `workers = -2`,
		"not toml":    `scale = = 2`,
	} {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		require.Error(t, err, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := Default()
	cfg.Packs = []string{"a", "b"}
	cfg.VerifyPacks = true
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}
