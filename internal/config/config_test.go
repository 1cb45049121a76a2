package config

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	f, err := ioutil.TempFile("", "ctu-*.toml")
	require.NoError(t, err)
	_, err = f.WriteString(body)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[grid]
nx1 = 32
nx2 = 16
dx1 = 1.0
dx2 = 1.0

[physics]
mhd = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Grid.NGhost)
	require.InDelta(t, 0.4, cfg.CFLNumber, 1e-12)
	require.InDelta(t, 5.0/3.0, cfg.Physics.Gamma, 1e-12)
	require.True(t, cfg.Physics.MHD)
}

func TestLoadRejectsBadGrid(t *testing.T) {
	path := writeTempConfig(t, `
[grid]
nx1 = 0
nx2 = 16
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownBoundary(t *testing.T) {
	path := writeTempConfig(t, `
[grid]
nx1 = 8
nx2 = 8
dx1 = 1
dx2 = 1

[boundary]
faces = ["outflow", "bogus", "outflow", "outflow", "outflow", "outflow"]
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/no/such/ctu.toml")
	require.Error(t, err)
}
