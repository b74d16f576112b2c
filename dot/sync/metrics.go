// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	currentlySyncingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "grin_sync",
		Name:      "currently_syncing",
		Help:      "1 while the sync driver believes the local chain is behind the fleet",
	})

	awaitingPeersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "grin_sync",
		Name:      "awaiting_peers",
		Help:      "1 during the initial peer-discovery delay",
	})

	highestObservedPeerHeightGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "grin_sync",
		Name:      "highest_observed_peer_height",
		Help:      "highest advertised peer height observed so far this run",
	})

	phaseInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grin_sync",
		Name:      "phase_invocations_total",
		Help:      "number of times each sync phase has run",
	}, []string{"phase"})
)

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
