// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/api"
	"github.com/ava-labs/vaultvm/api/jsonrpc"
	"github.com/ava-labs/vaultvm/api/ws"
	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/indexer"
	"github.com/ava-labs/vaultvm/pebble"
	"github.com/ava-labs/vaultvm/server"
	"github.com/ava-labs/vaultvm/trace"
	"github.com/ava-labs/vaultvm/utils"
	"github.com/ava-labs/vaultvm/vm"

	vlogging "github.com/ava-labs/vaultvm/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   consts.Name,
	Short: "Runs a vaultvm node",
	RunE:  runNode,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON or YAML node config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readGenesis(c *config.Config) ([]byte, error) {
	if len(c.GenesisFile) == 0 {
		return genesis.NewDefaultGenesis(nil).Bytes()
	}
	return os.ReadFile(c.GenesisFile)
}

func runNode(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	dataDir, err := c.GetDataDir()
	if err != nil {
		return err
	}
	if len(c.Log.Directory) == 0 {
		c.Log.Directory = filepath.Join(dataDir, "logs")
	}
	log := vlogging.New(consts.Name, c.Log)
	defer log.Stop()

	if err := run(log, &c, dataDir); err != nil {
		log.Error("node failed", zap.Error(err))
		return err
	}
	return nil
}

func run(log logging.Logger, c *config.Config, dataDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chainID, err := c.GetChainID()
	if err != nil {
		return err
	}
	genesisBytes, err := readGenesis(c)
	if err != nil {
		return fmt.Errorf("failed to read genesis: %w", err)
	}
	g, err := genesis.Load(genesisBytes, c.NetworkID, chainID)
	if err != nil {
		return err
	}

	tracer, err := trace.New(&c.Trace)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			log.Warn("failed to close tracer", zap.Error(err))
		}
	}()

	stateDir, err := utils.InitSubDirectory(dataDir, "state")
	if err != nil {
		return err
	}
	stateDB, stateRegistry, err := pebble.New(stateDir, "state_db", c.Pebble)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	v, err := vm.New(ctx, c.VM, log, tracer, stateDB, g)
	if err != nil {
		_ = stateDB.Close()
		return err
	}
	defer func() {
		if err := v.Close(); err != nil {
			log.Error("failed to close vm", zap.Error(err))
		}
	}()

	listener, err := net.Listen("tcp", c.HTTPAddress())
	if err != nil {
		return err
	}
	srv := server.New(
		log,
		listener,
		server.HTTPConfig{ReadHeaderTimeout: c.ReadHeaderTimeout},
		c.AllowedOrigins,
		c.ShutdownTimeout,
	)
	gatherers := prometheus.Gatherers{v.MetricsRegistry(), stateRegistry}

	rpcFactory := jsonrpc.JSONRPCServerFactory{}
	if c.StoreDeposits {
		indexDir, err := utils.InitSubDirectory(dataDir, "index")
		if err != nil {
			return err
		}
		indexDB, indexRegistry, err := pebble.New(indexDir, "index_db", c.Pebble)
		if err != nil {
			return fmt.Errorf("failed to open index database: %w", err)
		}
		idx, err := indexer.New(log, indexDB)
		if err != nil {
			_ = indexDB.Close()
			return err
		}
		v.Subscribe(idx)
		rpcFactory.Index = idx
		gatherers = append(gatherers, indexRegistry)
	}
	if err := srv.AddMetrics(gatherers); err != nil {
		return err
	}
	if err := addHandler(srv.AddRoute, rpcFactory, v); err != nil {
		return err
	}

	wsServer, pubsubServer := ws.NewWebSocketServer(log, c.Streaming)
	v.Subscribe(wsServer)
	if err := addHandler(srv.AddStreamRoute, ws.NewWebSocketServerFactory(pubsubServer), v); err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("serving API",
			zap.Stringer("address", srv.Addr()),
			zap.Stringer("chainID", g.Rules.ChainID),
			zap.Stringer("vault", v.VaultAddress()),
		)
		errs <- srv.Dispatch()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return srv.Shutdown()
}

func addHandler(
	add func(http.Handler, string) error,
	factory api.HandlerFactory[api.VM],
	v api.VM,
) error {
	handler, err := factory.New(v)
	if err != nil {
		return err
	}
	return add(handler.Handler, handler.Path)
}
