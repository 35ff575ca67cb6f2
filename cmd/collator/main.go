// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/collator/api"
	"github.com/vechain/collator/cmd/collator/httpserver"
	"github.com/vechain/collator/cmd/collator/node"
	"github.com/vechain/collator/log"
	"github.com/vechain/collator/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "Collator",
		Usage:   "Collator selection and staking node",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableAPILogsFlag,
			sessionLengthFlag,
			blockIntervalFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: runAction,
		Commands: []cli.Command{
			{
				Name:  "inspect",
				Usage: "print the state saved in the data dir",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					rawFlag,
				},
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	initLogger(ctx)
	defer func() { logger.Info("exited") }()

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if ctx.IsSet(sessionLengthFlag.Name) {
		cfg.SessionLength = uint32(ctx.Uint(sessionLengthFlag.Name))
	}
	if ctx.IsSet(blockIntervalFlag.Name) {
		cfg.BlockInterval = ctx.Duration(blockIntervalFlag.Name)
	}

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	dataDir := makeDataDir(ctx)
	db := openDB(ctx, dataDir, false)
	defer func() { logger.Info("closing database..."); db.Close() }()

	n, err := node.New(db, cfg.Params, cfg.Staker, &cfg.Genesis, cfg.nodeOptions(), mclock.System{})
	if err != nil {
		return err
	}

	handler, apiClose := api.New(n, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   enableMetrics,
	})
	defer func() { logger.Info("closing API..."); apiClose() }()

	apiURL, srvClose, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvClose() }()

	metricsURL := "Disabled"
	if enableMetrics {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	block, session := n.Head()
	fmt.Printf(`Starting %v
    Head         [ #%v session %v ]
    Session      [ %v blocks @%v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		fullVersion(),
		block, session,
		cfg.SessionLength, cfg.BlockInterval,
		dataDir,
		apiURL,
		metricsURL,
	)

	exitCtx, cancel := handleExitSignal()
	defer cancel()

	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		return n.Run(groupCtx)
	})
	return group.Wait()
}

func inspectAction(ctx *cli.Context) error {
	dataDir := ctx.String(dataDirFlag.Name)
	if _, err := os.Stat(dataDir); err != nil {
		return errors.Errorf("data dir [%v] not found", dataDir)
	}
	db := openDB(ctx, dataDir, true)
	defer db.Close()

	st, err := node.LoadState(db)
	if err != nil {
		return err
	}
	if st == nil {
		fmt.Println("no state saved in", dataDir)
		return nil
	}
	if ctx.Bool(rawFlag.Name) {
		spew.Dump(st)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
