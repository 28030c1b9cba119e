// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the yaml configuration the meridian command runs
// from. Addresses are kept as hex strings in the file and parsed on access,
// so a bad config fails at startup with the offending key in the error.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/state"
)

// Duration is a time.Duration parsed from the "300ms"/"2m" yaml form.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the root of the config file.
type Config struct {
	// DataDir holds the account database and the maintenance queue.
	DataDir string `yaml:"data-dir"`

	Metrics     Metrics     `yaml:"metrics"`
	Program     Program     `yaml:"program"`
	Instance    Instance    `yaml:"instance"`
	Maintenance Maintenance `yaml:"maintenance"`
}

// Metrics configures the prometheus endpoint of the run command.
type Metrics struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen-addr"`
}

// Program identifies the deployed program and the instance account.
type Program struct {
	Address  string `yaml:"address"`
	Instance string `yaml:"instance"`
}

// Instance holds the parameters the init command creates an instance from.
type Instance struct {
	Manager        string       `yaml:"manager"`
	ShareMint      string       `yaml:"share-mint"`
	Treasury       string       `yaml:"treasury"`
	Developer      string       `yaml:"developer"`
	MaxValidators  uint32       `yaml:"max-validators"`
	MaxMaintainers uint32       `yaml:"max-maintainers"`
	Distribution   Distribution `yaml:"distribution"`
}

// Distribution is the reward split in relative factors.
type Distribution struct {
	Treasury     uint32 `yaml:"treasury"`
	Validation   uint32 `yaml:"validation"`
	Developer    uint32 `yaml:"developer"`
	Appreciation uint32 `yaml:"appreciation"`
}

// Maintenance configures the run command's suggestion loop.
type Maintenance struct {
	// Interval between suggestion passes.
	Interval Duration `yaml:"interval"`

	// RentExempt is the chain's rent exemption threshold, used to compute
	// the spendable part of the reserve.
	RentExempt uint64 `yaml:"rent-exempt"`
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		DataDir: "meridian-data",
		Metrics: Metrics{
			ListenAddr: "localhost:2112",
		},
		Maintenance: Maintenance{
			Interval: Duration(time.Minute),
		},
	}
}

// Load reads and decodes the config file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read config")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithMessagef(err, "parse config %s", path)
	}
	return cfg, nil
}

// Save writes the config to path, for init bootstrapping a config file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ProgramAddress parses the program address.
func (c *Config) ProgramAddress() (meridian.Address, error) {
	return parseAddress("program.address", c.Program.Address)
}

// InstanceAddress parses the instance account address.
func (c *Config) InstanceAddress() (meridian.Address, error) {
	return parseAddress("program.instance", c.Program.Instance)
}

// InstanceParams is the typed form of the Instance section.
type InstanceParams struct {
	Manager        meridian.Address
	ShareMint      meridian.Address
	Distribution   state.RewardDistribution
	Recipients     state.FeeRecipients
	MaxValidators  uint32
	MaxMaintainers uint32
}

// InstanceParams parses and validates the Instance section.
func (c *Config) InstanceParams() (*InstanceParams, error) {
	params := &InstanceParams{
		Distribution: state.RewardDistribution{
			TreasuryFee:       c.Instance.Distribution.Treasury,
			ValidationFee:     c.Instance.Distribution.Validation,
			DeveloperFee:      c.Instance.Distribution.Developer,
			ShareAppreciation: c.Instance.Distribution.Appreciation,
		},
		MaxValidators:  c.Instance.MaxValidators,
		MaxMaintainers: c.Instance.MaxMaintainers,
	}
	var err error
	if params.Manager, err = parseAddress("instance.manager", c.Instance.Manager); err != nil {
		return nil, err
	}
	if params.ShareMint, err = parseAddress("instance.share-mint", c.Instance.ShareMint); err != nil {
		return nil, err
	}
	if params.Recipients.TreasuryAccount, err = parseAddress("instance.treasury", c.Instance.Treasury); err != nil {
		return nil, err
	}
	if params.Recipients.DeveloperAccount, err = parseAddress("instance.developer", c.Instance.Developer); err != nil {
		return nil, err
	}
	if err := params.Distribution.Check(); err != nil {
		return nil, err
	}
	return params, nil
}

func parseAddress(key, value string) (meridian.Address, error) {
	if value == "" {
		return meridian.Address{}, errors.Errorf("config key %s is required", key)
	}
	addr, err := meridian.ParseAddress(value)
	if err != nil {
		return meridian.Address{}, errors.WithMessagef(err, "config key %s", key)
	}
	return addr, nil
}
