// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meridian-pool/meridian/config"
	"github.com/meridian-pool/meridian/log"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/runtime/accountdb"
)

// initLogger installs the root log handler: logfmt on a terminal, JSON when
// piped or when --json-logs is set.
func initLogger(ctx *cli.Context) error {
	level, err := log.ParseLevel(stringFlag(ctx, verbosityFlag.Name))
	if err != nil {
		return err
	}
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if tty && !ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.NewTextHandler(os.Stderr, level))
	} else {
		log.SetDefault(log.NewJSONHandler(os.Stderr, level))
	}
	return nil
}

// loadConfig reads the config file when given, otherwise the defaults, and
// applies flag overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := stringFlag(ctx, configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if dir := stringFlag(ctx, dataDirFlag.Name); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// stringFlag reads a flag set either globally or on the subcommand.
func stringFlag(ctx *cli.Context, name string) string {
	if v := ctx.String(name); v != "" {
		return v
	}
	return ctx.GlobalString(name)
}

func programAddresses(cfg *config.Config) (programAddr, instanceAddr meridian.Address, err error) {
	if programAddr, err = cfg.ProgramAddress(); err != nil {
		return
	}
	instanceAddr, err = cfg.InstanceAddress()
	return
}

func openStore(cfg *config.Config) (*accountdb.LevelDB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	return accountdb.New(filepath.Join(cfg.DataDir, "accounts"), accountdb.Options{
		CacheSize:              64,
		OpenFilesCacheCapacity: 128,
	})
}

func queuePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "maintenance.queue")
}

// handleExitSignal cancels the returned context on SIGINT or SIGTERM.
func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
