// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package peerset

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/libp2p/go-libp2p/core/peer"

	dotsync "github.com/maciekf/grin-sync/dot/sync"
	"github.com/maciekf/grin-sync/lib/common"
)

// PeerSet is a registry of connected peers, implementing dot/sync.PeerSet
// by ranking the fleet on advertised total difficulty.
var _ dotsync.PeerSet = (*PeerSet)(nil)

type PeerSet struct {
	mu    sync.RWMutex
	peers map[peer.ID]*Peer
}

// New creates an empty peer registry.
func New() *PeerSet {
	return &PeerSet{peers: make(map[peer.ID]*Peer)}
}

// Add registers a newly connected peer.
func (s *PeerSet) Add(p *Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[p.address] = p
}

// Remove drops a disconnected peer from the registry.
func (s *PeerSet) Remove(id peer.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, id)
}

// Len reports how many peers are currently registered.
func (s *PeerSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

func (s *PeerSet) snapshot() []*Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p)
	}
	return out
}

// MostWorkPeer returns the single connected peer advertising the highest
// total difficulty.
func (s *PeerSet) MostWorkPeer() (dotsync.Peer, bool) {
	candidates := s.snapshot()
	if len(candidates) == 0 {
		return nil, false
	}

	slices.SortFunc(candidates, func(a, b *Peer) int {
		a.mu.RLock()
		b.mu.RLock()
		defer a.mu.RUnlock()
		defer b.mu.RUnlock()
		return b.difficulty.Cmp(a.difficulty)
	})
	return candidates[0], true
}

// MoreWorkPeers returns every connected peer advertising strictly more
// total difficulty than localDifficulty, ranked best-first.
func (s *PeerSet) MoreWorkPeers(localDifficulty common.Difficulty) []dotsync.Peer {
	candidates := s.snapshot()

	slices.SortFunc(candidates, func(a, b *Peer) int {
		a.mu.RLock()
		b.mu.RLock()
		defer a.mu.RUnlock()
		defer b.mu.RUnlock()
		return b.difficulty.Cmp(a.difficulty)
	})

	more := make([]dotsync.Peer, 0, len(candidates))
	for _, p := range candidates {
		p.mu.RLock()
		ahead := p.difficulty.GreaterThan(localDifficulty)
		p.mu.RUnlock()
		if ahead {
			more = append(more, p)
		}
	}
	return more
}
