// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package chainstore

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v2"
)

// CommitmentSet holds the aggregated UTXO/kernel commitment entries a
// txhashset snapshot represents, on a badger engine kept distinct from the
// header index's pebble store.
type CommitmentSet struct {
	db *badger.DB
}

// OpenCommitmentSet opens (creating if absent) a badger database at dir.
func OpenCommitmentSet(dir string) (*CommitmentSet, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("chainstore: open badger at %s: %w", dir, err)
	}
	return &CommitmentSet{db: db}, nil
}

// Close releases the underlying badger handle.
func (c *CommitmentSet) Close() error {
	return c.db.Close()
}

// PutCommitment records a single commitment (an output or kernel
// commitment, identified by its 33-byte compressed point) as present in
// the snapshot at the given block height.
func (c *CommitmentSet) PutCommitment(commitment []byte, height uint64) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(commitment, encodeHeightValue(height))
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("chainstore: put commitment: %w", err)
		}
		return nil
	})
}

// HasCommitment reports whether commitment is present in the snapshot.
func (c *CommitmentSet) HasCommitment(commitment []byte) (bool, error) {
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(commitment)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("chainstore: has commitment: %w", err)
	}
	return found, nil
}

// Count returns the number of commitments currently held, used to report
// snapshot size in status output.
func (c *CommitmentSet) Count() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("chainstore: count commitments: %w", err)
	}
	return count, nil
}

// Reset drops every commitment, used when a fast-sync snapshot is replaced
// by a newer one at a later horizon.
func (c *CommitmentSet) Reset() error {
	return c.db.DropAll()
}

func encodeHeightValue(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}
