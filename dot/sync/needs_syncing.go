// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import (
	"github.com/maciekf/grin-sync/lib/common"
)

// recentDifficultySpan is how many trailing difficulty-iterator entries are
// summed into the hysteresis threshold that gates switching sync on.
const recentDifficultySpan = 5

// NeedsSyncing collapses the local/peer comparison into a boolean plus the
// observed peer height (0 when no reading was available this tick).
func NeedsSyncing(isSyncing bool, peers PeerSet, chain Chain, log Logger) (shouldSync bool, observedPeerHeight uint64) {
	localDiff, err := chain.TotalDifficulty()
	if err != nil {
		// total_difficulty() is part of the same fatal-read contract as
		// head()/header_head(): without it neither branch below can make a
		// sound decision.
		panic(errChainStoreFatal)
	}

	peer, havePeer := peers.MostWorkPeer()

	if isSyncing {
		if !havePeer {
			log.Warnf("sync: no peers available, disabling sync")
			return false, 0
		}

		reader, ok := peer.TryRead()
		if !ok {
			// a transient read miss: preserve the current flag, report no
			// height observed this tick (the driver ignores a zero height).
			return isSyncing, 0
		}
		defer reader.Release()

		observedPeerHeight = reader.AdvertisedHeight()
		peerDiff := reader.AdvertisedTotalDifficulty()
		log.Debugf("needs_syncing %s %s", localDiff, peerDiff)

		if peerDiff.LessOrEqual(localDiff) {
			head, err := chain.Head()
			if err != nil {
				panic(errChainStoreFatal)
			}
			log.Infof("synchronised at %s @ %d [%s]", localDiff, head.Height, head.LastBlockHash.Short())
			if err := chain.ResetHead(); err != nil {
				log.Debugf("sync: reset_head failed: %v", err)
			}
			return false, 0
		}

		return true, observedPeerHeight
	}

	if havePeer {
		reader, ok := peer.TryRead()
		if !ok {
			return isSyncing, 0
		}
		defer reader.Release()

		observedPeerHeight = reader.AdvertisedHeight()
		peerDiff := reader.AdvertisedTotalDifficulty()
		threshold := recentDifficultyThreshold(chain.DifficultyIter())

		if peerDiff.GreaterThan(localDiff.Add(threshold)) {
			log.Infof("sync: total_difficulty %s, peer_difficulty %s, threshold %s (last %d blocks), enabling sync",
				localDiff, peerDiff, threshold, recentDifficultySpan)
			return true, observedPeerHeight
		}
		return isSyncing, observedPeerHeight
	}

	return isSyncing, 0
}

// recentDifficultyThreshold sums up to the last recentDifficultySpan
// entries of a difficulty iterator, skipping errored entries.
func recentDifficultyThreshold(it DifficultyIterator) common.Difficulty {
	sum := common.ZeroDifficulty()
	taken := 0
	for taken < recentDifficultySpan {
		value, err, ok := it.Next()
		if !ok {
			break
		}
		if err != nil {
			continue
		}
		sum = sum.Add(value)
		taken++
	}
	return sum
}
