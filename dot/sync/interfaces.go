// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import (
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/maciekf/grin-sync/lib/common"
)

// Chain is the persistent header/block index and UTXO commitment state the
// sync core consumes. It is an out-of-scope collaborator: the core never
// mutates its internal state beyond the handful of methods below.
//
//go:generate mockgen -source=interfaces.go -destination=mocks_test.go -package=sync
type Chain interface {
	// Head returns the tip of the fully-validated block chain.
	Head() (common.Tip, error)
	// HeaderHead returns the tip of the validated header-only chain.
	HeaderHead() (common.Tip, error)
	// SyncHead returns the tip used as the basis for header locators.
	SyncHead() (common.Tip, error)
	// TotalDifficulty returns the local chain's cumulative difficulty.
	TotalDifficulty() (common.Difficulty, error)
	// GetBlockHeader looks up a header by hash.
	GetBlockHeader(hash common.Hash) (*common.BlockHeader, error)
	// IsOnCurrentChain reports whether header is on the currently-active
	// validated chain.
	IsOnCurrentChain(header *common.BlockHeader) (bool, error)
	// HasBlock reports whether the full block body for hash is already stored.
	HasBlock(hash common.Hash) (bool, error)
	// IsOrphan reports whether hash is held in the orphan set.
	IsOrphan(hash common.Hash) bool
	// DifficultyIter walks difficulty entries descending from the tip.
	DifficultyIter() DifficultyIterator
	// ResetHead invalidates stale sync-head bookkeeping on catch-up.
	ResetHead() error
}

// DifficultyIterator walks per-block difficulties descending from a chain
// tip. Ok is false once the sequence is exhausted; an entry may carry a
// non-nil error instead of a value, meaning "skip this entry."
type DifficultyIterator interface {
	Next() (value common.Difficulty, err error, ok bool)
}

// PeerSet is the fleet of currently connected peers, as exposed by the peer
// manager. It is an out-of-scope collaborator.
type PeerSet interface {
	// MostWorkPeer returns the single peer advertising the highest
	// cumulative difficulty, if any peer is connected.
	MostWorkPeer() (Peer, bool)
	// MoreWorkPeers returns every peer whose advertised difficulty exceeds
	// the local total difficulty.
	MoreWorkPeers(localDifficulty common.Difficulty) []Peer
}

// Peer is a handle to a single connected peer, behind a reader-writer guard
// the core only ever reads non-blockingly: a failed TryRead means "skip
// this tick," never a retry loop.
type Peer interface {
	TryRead() (PeerReader, bool)
}

// PeerReader is the snapshot + request surface obtained from a successful
// non-blocking peer read. Release must be called once the caller is done
// with it, mirroring the scope of a dropped RwLockReadGuard.
type PeerReader interface {
	Address() peer.ID
	AdvertisedHeight() uint64
	AdvertisedTotalDifficulty() common.Difficulty

	SendHeaderRequest(locator []common.Hash) error
	SendBlockRequest(hash common.Hash) error
	SendTxHashSetRequest(height uint64, hash common.Hash) error

	Release()
}

// ProtocolParams exposes protocol-level constants the core consumes.
type ProtocolParams interface {
	// CutThroughHorizon returns the number of blocks behind the tip below
	// which the node need not retain individual blocks.
	CutThroughHorizon() uint64
}
