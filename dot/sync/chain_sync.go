// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	tickInterval        = 1 * time.Second
	initialWaitDuration = 30 * time.Second
	headerSyncCadence   = 10 * time.Second
	bodySyncCadence     = 5 * time.Second
	fastSyncCadence     = 5 * time.Minute
)

// SyncState is the process-wide, shared-by-reference state the rest of the
// node observes. Every flag is advisory: no invariant in the node depends
// on the precise ordering of reads/writes against chain-store state.
type SyncState struct {
	currentlySyncing atomic.Bool
	awaitingPeers    atomic.Bool
	stop             atomic.Bool

	highestObservedPeerHeight atomic.Uint64

	// touched only by the single driver goroutine; never read concurrently.
	prevHeaderSyncAt time.Time
	prevBodySyncAt   time.Time
	prevFastSyncAt   time.Time
}

// NewSyncState creates a SyncState ready to be handed to RunSync and shared
// by reference with the rest of the node.
func NewSyncState() *SyncState {
	return &SyncState{}
}

// CurrentlySyncing reports whether the driver believes a sync phase is
// currently active.
func (s *SyncState) CurrentlySyncing() bool { return s.currentlySyncing.Load() }

// AwaitingPeers reports whether the driver is in its initial peer-discovery
// delay.
func (s *SyncState) AwaitingPeers() bool { return s.awaitingPeers.Load() }

// HighestObservedPeerHeight returns the highest peer height observed so far
// this run; it is sticky at its last nonzero reading.
func (s *SyncState) HighestObservedPeerHeight() uint64 { return s.highestObservedPeerHeight.Load() }

// RequestStop signals the driver to exit at the end of its current tick.
func (s *SyncState) RequestStop() { s.stop.Store(true) }

// Stopped reports whether shutdown has been requested.
func (s *SyncState) Stopped() bool { return s.stop.Load() }

// Driver is the sync control loop's supervisory task: on a fixed tick, it
// inspects local chain state and peer state, decides which sync phase
// applies, and dispatches the corresponding phase procedure on its cadence.
type Driver struct {
	state    *SyncState
	peers    PeerSet
	chain    Chain
	protocol ProtocolParams
	clock    Clock
	log      Logger

	skipInitialWait bool
	archiveMode     bool
}

// DriverConfig collects the Driver's dependencies and policy flags.
type DriverConfig struct {
	State           *SyncState
	Peers           PeerSet
	Chain           Chain
	Protocol        ProtocolParams
	Clock           Clock
	Log             Logger
	SkipInitialWait bool
	ArchiveMode     bool
}

// NewDriver builds a Driver from its config, defaulting Clock to the system
// clock when unset.
func NewDriver(cfg DriverConfig) *Driver {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Driver{
		state:           cfg.State,
		peers:           cfg.Peers,
		chain:           cfg.Chain,
		protocol:        cfg.Protocol,
		clock:           clock,
		log:             cfg.Log,
		skipInitialWait: cfg.SkipInitialWait,
		archiveMode:     cfg.ArchiveMode,
	}
}

// RunSync spawns the driver task and returns immediately.
func RunSync(cfg DriverConfig) *Driver {
	d := NewDriver(cfg)
	go d.run()
	return d
}

func (d *Driver) run() {
	now := d.clock.Now()
	d.state.prevHeaderSyncAt = now
	d.state.prevBodySyncAt = now
	// seeded 5 minutes in the past so fast sync may fire on the first
	// eligible tick.
	d.state.prevFastSyncAt = now.Add(-fastSyncCadence)

	if !d.skipInitialWait {
		d.state.awaitingPeers.Store(true)
		d.clock.Sleep(initialWaitDuration)
		d.state.awaitingPeers.Store(false)
	}

	for {
		d.tick()

		d.clock.Sleep(tickInterval)

		if d.state.Stopped() {
			return
		}
	}
}

func (d *Driver) tick() {
	tickID := uuid.New()

	head, err := d.chain.Head()
	if err != nil {
		d.log.Criticalf("sync[%s]: failed to read chain head: %v", tickID, err)
		panic(errChainStoreFatal)
	}
	headerHead, err := d.chain.HeaderHead()
	if err != nil {
		d.log.Criticalf("sync[%s]: failed to read header head: %v", tickID, err)
		panic(errChainStoreFatal)
	}

	isSyncing, observedPeerHeight := NeedsSyncing(d.state.CurrentlySyncing(), d.peers, d.chain, d.log)
	if observedPeerHeight > 0 {
		d.state.highestObservedPeerHeight.Store(observedPeerHeight)
	}
	highestObservedPeerHeight := d.state.HighestObservedPeerHeight()
	highestObservedPeerHeightGauge.Set(float64(highestObservedPeerHeight))

	horizon := d.protocol.CutThroughHorizon()
	fastSyncEnabled := !d.archiveMode && saturatingSub(highestObservedPeerHeight, head.Height) > horizon

	d.log.Debugf("sync[%s]: syncing: %t, fast: %t", tickID, isSyncing, fastSyncEnabled)
	d.log.Debugf("sync[%s]: heights: %d, vs local %d", tickID, highestObservedPeerHeight, headerHead.Height)

	now := d.clock.Now()
	if isSyncing {
		if now.Sub(d.state.prevHeaderSyncAt) > headerSyncCadence {
			headerSync(d.peers, d.chain, d.log)
			d.state.prevHeaderSyncAt = now
			phaseInvocations.WithLabelValues("header").Inc()
		}

		if !fastSyncEnabled && now.Sub(d.state.prevBodySyncAt) > bodySyncCadence {
			bodySync(d.peers, d.chain, d.log)
			d.state.prevBodySyncAt = now
			phaseInvocations.WithLabelValues("body").Inc()
		}

		if fastSyncEnabled && headerHead.Height == highestObservedPeerHeight &&
			now.Sub(d.state.prevFastSyncAt) > fastSyncCadence {
			fastSync(d.peers, d.chain, d.protocol, headerHead, d.log)
			d.state.prevFastSyncAt = now
			phaseInvocations.WithLabelValues("fast").Inc()
		}
	}

	d.state.currentlySyncing.Store(isSyncing)
	currentlySyncingGauge.Set(boolToFloat(isSyncing))
	awaitingPeersGauge.Set(boolToFloat(d.state.AwaitingPeers()))
}

// saturatingSub returns a-b, or 0 if b > a.
func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
