// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package peerset is a demo-grade dot/sync.PeerSet/Peer implementation:
// non-blocking reads behind sync.RWMutex.TryRLock, peer identity via
// libp2p's peer.ID, and reconnect backoff. It is enough to exercise the
// driver against a fleet of peers end-to-end, not a full network stack.
package peerset

import (
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"

	dotsync "github.com/maciekf/grin-sync/dot/sync"
	"github.com/maciekf/grin-sync/lib/common"
)

// Peer guards one connected peer's advertised state behind a RWMutex, so a
// non-blocking reader (dot/sync's TryRead contract) never stalls behind a
// concurrent update from the connection's read loop.
type Peer struct {
	mu sync.RWMutex

	address    peer.ID
	height     uint64
	difficulty common.Difficulty

	sender Sender
}

// Sender is the outbound half of a connected peer: whatever transport
// layer actually writes protocol messages to the wire. dot/sync never
// talks to it directly; only through reader.Send*Request.
type Sender interface {
	SendHeaders(locator []common.Hash) error
	SendGetBlock(hash common.Hash) error
	SendTxHashSetRequest(height uint64, hash common.Hash) error
}

// NewPeer wraps a connected peer's identity and sender behind the
// TryRead/Release contract dot/sync expects.
func NewPeer(address peer.ID, sender Sender) *Peer {
	return &Peer{address: address, sender: sender}
}

// UpdateAdvertised records a peer's latest advertised chain state, called
// from the connection's read loop whenever a Status/Ping message arrives.
func (p *Peer) UpdateAdvertised(height uint64, difficulty common.Difficulty) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.height = height
	p.difficulty = difficulty
}

// TryRead attempts a non-blocking read lock: if the peer is mid-update,
// the sync driver skips it this tick rather than stalling.
func (p *Peer) TryRead() (dotsync.PeerReader, bool) {
	if !p.mu.TryRLock() {
		return nil, false
	}
	return &peerReader{peer: p}, true
}

// peerReader is the live view handed to dot/sync while the RLock is held;
// Release must be called exactly once to unlock it.
type peerReader struct {
	peer *Peer
}

func (r *peerReader) Address() peer.ID                             { return r.peer.address }
func (r *peerReader) AdvertisedHeight() uint64                     { return r.peer.height }
func (r *peerReader) AdvertisedTotalDifficulty() common.Difficulty { return r.peer.difficulty }

func (r *peerReader) SendHeaderRequest(locator []common.Hash) error {
	return r.peer.sender.SendHeaders(locator)
}

func (r *peerReader) SendBlockRequest(hash common.Hash) error {
	return r.peer.sender.SendGetBlock(hash)
}

func (r *peerReader) SendTxHashSetRequest(height uint64, hash common.Hash) error {
	return r.peer.sender.SendTxHashSetRequest(height, hash)
}

func (r *peerReader) Release() {
	r.peer.mu.RUnlock()
}
