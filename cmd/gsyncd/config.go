// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config collects runSync's tunables plus the process-level settings that
// surround it: data directory, horizon override, and the status server's
// bind address.
type Config struct {
	DataDir         string `mapstructure:"data_dir"`
	ArchiveMode     bool   `mapstructure:"archive_mode"`
	SkipInitialWait bool   `mapstructure:"skip_initial_wait"`
	Horizon         uint64 `mapstructure:"horizon"`
	MinPeers        int    `mapstructure:"min_peers"`
	ListenAddr      string `mapstructure:"listen_addr"`
}

func defaultConfig() Config {
	return Config{
		DataDir:         filepath.Join(xdg.DataHome, "gsyncd"),
		ArchiveMode:     false,
		SkipInitialWait: false,
		Horizon:         1440, // one day of one-minute blocks
		MinPeers:        3,
		ListenAddr:      "127.0.0.1:3420",
	}
}

// loadConfig reads gsyncd/gsyncd.yaml from the xdg config directories (if
// present), overlays it onto the defaults, and returns the result. Flags
// bound into v via cobra take precedence over both.
func loadConfig(v *viper.Viper) (Config, error) {
	cfg := defaultConfig()

	configPath, err := xdg.SearchConfigFile(filepath.Join("gsyncd", "gsyncd.yaml"))
	if err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("gsyncd: read config %s: %w", configPath, err)
		}
	}

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("archive_mode", cfg.ArchiveMode)
	v.SetDefault("skip_initial_wait", cfg.SkipInitialWait)
	v.SetDefault("horizon", cfg.Horizon)
	v.SetDefault("min_peers", cfg.MinPeers)
	v.SetDefault("listen_addr", cfg.ListenAddr)

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("gsyncd: unmarshal config: %w", err)
	}
	return cfg, nil
}

// protocolParams adapts the resolved horizon to dot/sync.ProtocolParams.
type protocolParams struct {
	horizon uint64
}

func (p protocolParams) CutThroughHorizon() uint64 { return p.horizon }
