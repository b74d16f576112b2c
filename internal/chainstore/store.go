// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package chainstore provides a demo-grade Chain implementation so the
// sync driver in dot/sync can be exercised end-to-end: a real header
// index, a commitment-set snapshot store, and txhashset archive framing.
// dot/sync treats it purely through the Chain interface; it is not meant
// to be a production block-validation pipeline.
package chainstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	dotsync "github.com/maciekf/grin-sync/dot/sync"
	"github.com/maciekf/grin-sync/lib/common"
)

var _ dotsync.Chain = (*Store)(nil)

var (
	keyHeaderPrefix = []byte("h:")
	keyHead         = []byte("tip:head")
	keyHeaderHead   = []byte("tip:header_head")
	keySyncHead     = []byte("tip:sync_head")
)

// Store is a pebble-backed header index and tip table. It implements
// dot/sync.Chain directly: GetBlockHeader, Head/HeaderHead/SyncHead,
// TotalDifficulty, IsOnCurrentChain, HasBlock, IsOrphan, DifficultyIter,
// ResetHead.
type Store struct {
	db *pebble.DB

	mu      sync.RWMutex
	orphans map[common.Hash]struct{}
}

// Open opens (creating if absent) a pebble database at dir as the backing
// store for the header index.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("chainstore: open pebble at %s: %w", dir, err)
	}
	return &Store{db: db, orphans: make(map[common.Hash]struct{})}, nil
}

// Close releases the underlying pebble handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func headerKey(hash common.Hash) []byte {
	return append(append([]byte{}, keyHeaderPrefix...), hash[:]...)
}

func encodeHeader(h *common.BlockHeader) []byte {
	buf := make([]byte, 0, common.HashLength*2+8+8)
	buf = append(buf, h.Hash[:]...)
	buf = append(buf, h.PreviousHash[:]...)
	buf = binary.BigEndian.AppendUint64(buf, h.Height)
	buf = binary.BigEndian.AppendUint64(buf, h.TotalDifficulty.Uint64())
	return buf
}

func decodeHeader(buf []byte) (*common.BlockHeader, error) {
	want := common.HashLength*2 + 16
	if len(buf) != want {
		return nil, fmt.Errorf("chainstore: malformed header record (%d bytes, want %d)", len(buf), want)
	}
	h := &common.BlockHeader{}
	copy(h.Hash[:], buf[:common.HashLength])
	copy(h.PreviousHash[:], buf[common.HashLength:2*common.HashLength])
	h.Height = binary.BigEndian.Uint64(buf[2*common.HashLength : 2*common.HashLength+8])
	h.TotalDifficulty = common.NewDifficulty(binary.BigEndian.Uint64(buf[2*common.HashLength+8:]))
	return h, nil
}

// PutHeader indexes a header, leaving it unmarked as orphan.
func (s *Store) PutHeader(h *common.BlockHeader) error {
	if err := s.db.Set(headerKey(h.Hash), encodeHeader(h), pebble.Sync); err != nil {
		return fmt.Errorf("chainstore: put header %s: %w", h.Hash.Short(), err)
	}
	return nil
}

// MarkOrphan records hash as an orphan (a block received out of order, with
// its parent not yet known); dot/sync.Chain.IsOrphan reflects this.
func (s *Store) MarkOrphan(hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orphans[hash] = struct{}{}
}

func (s *Store) GetBlockHeader(hash common.Hash) (*common.BlockHeader, error) {
	value, closer, err := s.db.Get(headerKey(hash))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("chainstore: no such header %s", hash.Short())
		}
		return nil, fmt.Errorf("chainstore: get header %s: %w", hash.Short(), err)
	}
	defer closer.Close()
	return decodeHeader(value)
}

// HasBlock reports whether a header for hash is indexed. The store keeps no
// block bodies, so every hash whose header has been put counts as stored.
func (s *Store) HasBlock(hash common.Hash) (bool, error) {
	_, closer, err := s.db.Get(headerKey(hash))
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("chainstore: has_block %s: %w", hash.Short(), err)
	}
	closer.Close()
	return true, nil
}

func (s *Store) IsOrphan(hash common.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orphans[hash]
	return ok
}

// IsOnCurrentChain walks previous-hash pointers back from the recorded
// head to see whether header is an ancestor of (or equal to) the current
// tip.
func (s *Store) IsOnCurrentChain(header *common.BlockHeader) (bool, error) {
	head, err := s.Head()
	if err != nil {
		return false, err
	}
	current := head.LastBlockHash
	for {
		if current == header.Hash {
			return true, nil
		}
		h, err := s.GetBlockHeader(current)
		if err != nil {
			return false, nil
		}
		if h.Height <= header.Height {
			return false, nil
		}
		current = h.PreviousHash
	}
}

func (s *Store) readTip(key []byte) (common.Tip, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return common.Tip{}, nil
		}
		return common.Tip{}, fmt.Errorf("chainstore: read tip %s: %w", key, err)
	}
	defer closer.Close()
	h, err := decodeHeader(value)
	if err != nil {
		return common.Tip{}, err
	}
	return common.Tip{
		LastBlockHash:     h.Hash,
		PreviousBlockHash: h.PreviousHash,
		Height:            h.Height,
		TotalDifficulty:   h.TotalDifficulty,
	}, nil
}

func (s *Store) writeTip(key []byte, h *common.BlockHeader) error {
	if err := s.db.Set(key, encodeHeader(h), pebble.Sync); err != nil {
		return fmt.Errorf("chainstore: write tip %s: %w", key, err)
	}
	return nil
}

func (s *Store) Head() (common.Tip, error)       { return s.readTip(keyHead) }
func (s *Store) HeaderHead() (common.Tip, error) { return s.readTip(keyHeaderHead) }
func (s *Store) SyncHead() (common.Tip, error)   { return s.readTip(keySyncHead) }

// SetHead advances the body-validated tip to header.
func (s *Store) SetHead(header *common.BlockHeader) error { return s.writeTip(keyHead, header) }

// SetHeaderHead advances the header-validated tip to header.
func (s *Store) SetHeaderHead(header *common.BlockHeader) error {
	return s.writeTip(keyHeaderHead, header)
}

// SetSyncHead advances the locator base to header.
func (s *Store) SetSyncHead(header *common.BlockHeader) error { return s.writeTip(keySyncHead, header) }

func (s *Store) TotalDifficulty() (common.Difficulty, error) {
	head, err := s.Head()
	if err != nil {
		return common.Difficulty{}, err
	}
	return head.TotalDifficulty, nil
}

// ResetHead rewinds header_head and sync_head back to the body-validated
// head, clearing stale sync bookkeeping once the node has caught up.
func (s *Store) ResetHead() error {
	head, err := s.Head()
	if err != nil {
		return err
	}
	header, err := s.GetBlockHeader(head.LastBlockHash)
	if err != nil {
		return err
	}
	if err := s.writeTip(keyHeaderHead, header); err != nil {
		return err
	}
	return s.writeTip(keySyncHead, header)
}

// DifficultyIter returns a reverse walk over per-block difficulties
// starting at head, the way dot/sync's needs_syncing threshold calculation
// consumes it. Each entry is the block's own difficulty, i.e. its total
// difficulty minus its parent's; the genesis entry is its total difficulty
// outright.
func (s *Store) DifficultyIter() dotsync.DifficultyIterator {
	head, err := s.Head()
	if err != nil {
		return &difficultyIter{store: s, err: err}
	}
	return &difficultyIter{store: s, current: head.LastBlockHash}
}

type difficultyIter struct {
	store   *Store
	current common.Hash
	done    bool
	err     error
}

func (it *difficultyIter) Next() (common.Difficulty, error, bool) {
	if it.err != nil {
		err := it.err
		it.err = nil
		return common.Difficulty{}, err, true
	}
	if it.done {
		return common.Difficulty{}, nil, false
	}
	header, err := it.store.GetBlockHeader(it.current)
	if err != nil {
		it.done = true
		return common.Difficulty{}, err, true
	}
	if header.Height == 0 {
		it.done = true
		return header.TotalDifficulty, nil, true
	}
	it.current = header.PreviousHash
	parent, err := it.store.GetBlockHeader(header.PreviousHash)
	if err != nil {
		it.done = true
		return common.Difficulty{}, err, true
	}
	return header.TotalDifficulty.Sub(parent.TotalDifficulty), nil, true
}
