// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import "github.com/maciekf/grin-sync/lib/common"

// LocatorHeights returns the descending list of heights at which a header
// locator requests headers, starting at height and stepping back by
// increasing powers of two, always terminating at 0.
//
// height=0 -> [0]; height=10 -> [10,8,4,0]; height=10000 yields 14 entries.
// The list length stays logarithmic in height, keeping header requests
// cheap regardless of chain age.
func LocatorHeights(height uint64) []uint64 {
	heights := make([]uint64, 0, 8)
	current := height
	for current > 0 {
		heights = append(heights, current)
		step := uint64(1) << uint(len(heights))
		if current > step {
			current -= step
		} else {
			current = 0
		}
	}
	heights = append(heights, 0)
	return heights
}

// BuildLocator walks previous-hash pointers starting at syncHead, collecting
// the hash at every header whose height is a member of LocatorHeights(syncHead.Height).
// The walk stops when a header can no longer be fetched (genesis reached, or
// the chain store is missing an ancestor). Returned in walk order
// (descending height).
func BuildLocator(chain Chain, syncHead common.Tip) ([]common.Hash, error) {
	heights := LocatorHeights(syncHead.Height)
	wanted := make(map[uint64]struct{}, len(heights))
	for _, h := range heights {
		wanted[h] = struct{}{}
	}

	locator := make([]common.Hash, 0, len(heights))
	currentHash := syncHead.LastBlockHash
	for {
		header, err := chain.GetBlockHeader(currentHash)
		if err != nil || header == nil {
			break
		}
		if _, ok := wanted[header.Height]; ok {
			locator = append(locator, header.Hash)
		}
		if header.Height == 0 {
			break
		}
		currentHash = header.PreviousHash
	}
	return locator, nil
}
