// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/meridian"
)

func hexAddr(name string) string {
	return meridian.BytesToAddress([]byte(name)).String()
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data-dir: /var/lib/meridian
metrics:
  enabled: true
  listen-addr: localhost:9100
program:
  address: `+hexAddr("program")+`
  instance: `+hexAddr("instance")+`
maintenance:
  interval: 30s
  rent-exempt: 1000000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/meridian", cfg.DataDir)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "localhost:9100", cfg.Metrics.ListenAddr)
	assert.Equal(t, Duration(30*time.Second), cfg.Maintenance.Interval)
	assert.Equal(t, uint64(1_000_000), cfg.Maintenance.RentExempt)

	program, err := cfg.ProgramAddress()
	require.NoError(t, err)
	assert.Equal(t, meridian.BytesToAddress([]byte("program")), program)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "meridian-data", cfg.DataDir)
	assert.Equal(t, Duration(time.Minute), cfg.Maintenance.Interval)
	assert.False(t, cfg.Metrics.Enabled)

	// the program section has no sensible default
	_, err := cfg.ProgramAddress()
	assert.ErrorContains(t, err, "program.address")
}

func TestInstanceParams(t *testing.T) {
	path := writeConfig(t, `
instance:
  manager: `+hexAddr("manager")+`
  share-mint: `+hexAddr("mint")+`
  treasury: `+hexAddr("treasury")+`
  developer: `+hexAddr("developer")+`
  max-validators: 100
  max-maintainers: 10
  distribution:
    treasury: 2
    validation: 2
    developer: 1
    appreciation: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	params, err := cfg.InstanceParams()
	require.NoError(t, err)
	assert.Equal(t, meridian.BytesToAddress([]byte("manager")), params.Manager)
	assert.Equal(t, uint32(100), params.MaxValidators)
	assert.Equal(t, uint32(2), params.Distribution.TreasuryFee)
	assert.Equal(t, uint32(5), params.Distribution.ShareAppreciation)
}

func TestInstanceParamsRejectsBadInput(t *testing.T) {
	cfg := Default()
	cfg.Instance = Instance{
		Manager:   "not-an-address",
		ShareMint: hexAddr("mint"),
		Treasury:  hexAddr("treasury"),
		Developer: hexAddr("developer"),
	}
	_, err := cfg.InstanceParams()
	assert.ErrorContains(t, err, "instance.manager")

	// an all-zero distribution cannot split rewards
	cfg.Instance.Manager = hexAddr("manager")
	_, err = cfg.InstanceParams()
	assert.Error(t, err)
}

func TestBadDurationRejected(t *testing.T) {
	path := writeConfig(t, `
maintenance:
  interval: soon
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "elsewhere"
	cfg.Maintenance.Interval = Duration(90 * time.Second)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, cfg.Maintenance.Interval, loaded.Maintenance.Interval)
}
