// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meridian-pool/meridian/log"
	"github.com/meridian-pool/meridian/metrics"
	"github.com/meridian-pool/meridian/program"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/state"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "cmd")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%.8s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Meridian",
		Usage:     "Meridian liquid staking pool tooling",
		Copyright: "2026 The Meridian developers",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Commands: []cli.Command{
			{
				Name:  "init",
				Usage: "create a pool instance account in the local store",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: initAction,
			},
			{
				Name:  "run",
				Usage: "serve metrics and suggest maintenance instructions",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					verbosityFlag,
					jsonLogsFlag,
					metricsAddrFlag,
				},
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initAction creates the pool instance account in the local store from the
// instance section of the config, and prints the derived addresses the
// operator needs to fund before the instance can run.
func initAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	programAddr, instanceAddr, err := programAddresses(cfg)
	if err != nil {
		return err
	}
	params, err := cfg.InstanceParams()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Get(instanceAddr); err == nil {
		return fmt.Errorf("instance %v already exists in %s", instanceAddr, cfg.DataDir)
	}

	pool := state.New(
		params.Manager,
		params.ShareMint,
		params.Distribution,
		params.Recipients,
		params.MaxValidators,
		params.MaxMaintainers,
	)
	data, err := pool.Serialize()
	if err != nil {
		return err
	}
	if err := store.Put(instanceAddr, &runtime.Account{Owner: programAddr, Data: data}); err != nil {
		return err
	}

	p := program.New(programAddr, instanceAddr, runtime.Env{Store: store})
	logger.Info("instance created",
		"instance", instanceAddr,
		"manager", params.Manager,
		"reserve", p.ReserveAddress(),
		"mintAuthority", p.MintAuthority(),
		"stakeAuthority", p.StakeAuthority(),
	)
	fmt.Printf("instance:        %v\n", instanceAddr)
	fmt.Printf("reserve:         %v\n", p.ReserveAddress())
	fmt.Printf("mint authority:  %v\n", p.MintAuthority())
	fmt.Printf("stake authority: %v\n", p.StakeAuthority())
	return nil
}

// runAction serves the prometheus endpoint and periodically writes suggested
// maintenance instructions for the instance in the local store.
func runAction(ctx *cli.Context) error {
	defer logger.Info("exited")

	if err := initLogger(ctx); err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if addr := ctx.String(metricsAddrFlag.Name); addr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = addr
	}
	programAddr, instanceAddr, err := programAddresses(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing account database..."); store.Close() }()

	runCtx, cancel := handleExitSignal()
	defer cancel()
	group, groupCtx := errgroup.WithContext(runCtx)

	if cfg.Metrics.Enabled {
		metrics.InitializePrometheusMetrics()
		listener, err := net.Listen("tcp", cfg.Metrics.ListenAddr)
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: metrics.HTTPHandler()}
		group.Go(func() error {
			logger.Info("metrics served", "addr", listener.Addr())
			if err := srv.Serve(listener); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			return srv.Close()
		})
	}

	loop := &maintenanceLoop{
		store:     store,
		processor: program.New(programAddr, instanceAddr, runtime.Env{Store: store}),
		queuePath: queuePath(cfg),
		rent:      cfg.Maintenance.RentExempt,
		interval:  time.Duration(cfg.Maintenance.Interval),
	}
	group.Go(func() error { return loop.run(groupCtx) })

	return group.Wait()
}
