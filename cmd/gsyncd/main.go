// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Command gsyncd runs the chain sync driver against a demo chainstore and
// peerset, and serves a small status/metrics HTTP endpoint.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maciekf/grin-sync/dot/sync"
	"github.com/maciekf/grin-sync/internal/chainstore"
	"github.com/maciekf/grin-sync/internal/log"
	"github.com/maciekf/grin-sync/internal/peerset"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "gsyncd",
		Short: "Chain sync driver demo: runs needs_syncing/header/body/fast sync against a real store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	root.PersistentFlags().Bool("archive-mode", false, "disable fast (txhashset) sync")
	root.PersistentFlags().Bool("skip-initial-wait", false, "skip the 30s initial peer-discovery delay")
	root.PersistentFlags().Uint64("horizon", 1440, "cut-through horizon in blocks")
	root.PersistentFlags().String("listen-addr", "", "status/metrics HTTP listen address")
	_ = v.BindPFlag("archive_mode", root.PersistentFlags().Lookup("archive-mode"))
	_ = v.BindPFlag("skip_initial_wait", root.PersistentFlags().Lookup("skip-initial-wait"))
	_ = v.BindPFlag("horizon", root.PersistentFlags().Lookup("horizon"))
	_ = v.BindPFlag("listen_addr", root.PersistentFlags().Lookup("listen-addr"))

	root.AddCommand(newStatusCommand())
	return root
}

func run(cfg Config) error {
	logger, err := log.NewDevelopment()
	if err != nil {
		return fmt.Errorf("gsyncd: build logger: %w", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("gsyncd: create data dir %s: %w", cfg.DataDir, err)
	}

	store, err := chainstore.Open(filepath.Join(cfg.DataDir, "headers"))
	if err != nil {
		return fmt.Errorf("gsyncd: open chainstore: %w", err)
	}
	defer store.Close()

	commitments, err := chainstore.OpenCommitmentSet(filepath.Join(cfg.DataDir, "commitments"))
	if err != nil {
		return fmt.Errorf("gsyncd: open commitment set: %w", err)
	}
	defer commitments.Close()

	peers := peerset.New()
	state := sync.NewSyncState()

	sync.RunSync(sync.DriverConfig{
		State:           state,
		Peers:           peers,
		Chain:           store,
		Protocol:        protocolParams{horizon: cfg.Horizon},
		Log:             logger,
		SkipInitialWait: cfg.SkipInitialWait,
		ArchiveMode:     cfg.ArchiveMode,
	})

	server := newStatusServer(cfg.ListenAddr, state, peers)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			logger.Errorf("gsyncd: status server stopped: %v", err)
		}
	}()

	logger.Infof("gsyncd: running, data_dir=%s listen_addr=%s", cfg.DataDir, cfg.ListenAddr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Infof("gsyncd: shutting down")
	state.RequestStop()
	return nil
}
