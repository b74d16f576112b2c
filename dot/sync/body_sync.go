// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import "github.com/maciekf/grin-sync/lib/common"

// maxBodySyncPeers caps how many more-work peers feed into the fan-out size
// computation, regardless of how many are actually connected.
const maxBodySyncPeers = 10

// blocksPerPeer is how many blocks are requested for each more-work peer
// counted towards the fan-out, up to maxBodySyncPeers.
const blocksPerPeer = 10

// bodySync walks backward from header_head along previous-hash pointers to
// the common ancestor with the current validated chain, then fans a prefix
// of the missing blocks out across more-work peers. More connected peers
// means a proportionally bigger batch, spreading request cost.
func bodySync(peers PeerSet, chain Chain, log Logger) {
	bodyHead, err := chain.Head()
	if err != nil {
		log.Debugf("body_sync: failed to read head: %v", err)
		return
	}
	headerHead, err := chain.HeaderHead()
	if err != nil {
		log.Debugf("body_sync: failed to read header head: %v", err)
		return
	}

	syncHead, err := chain.SyncHead()
	if err != nil {
		log.Debugf("body_sync: failed to read sync head: %v", err)
		return
	}

	log.Debugf("body_sync: body_head - %s, %d, header_head - %s, %d, sync_head - %s, %d",
		bodyHead.LastBlockHash.Short(), bodyHead.Height,
		headerHead.LastBlockHash.Short(), headerHead.Height,
		syncHead.LastBlockHash.Short(), syncHead.Height)

	var hashes []common.Hash
	if headerHead.TotalDifficulty.GreaterThan(bodyHead.TotalDifficulty) {
		hashes = walkToCommonAncestor(chain, headerHead.LastBlockHash, log)
	}
	reverseHashes(hashes)

	localDiff, err := chain.TotalDifficulty()
	if err != nil {
		log.Debugf("body_sync: failed to read total difficulty: %v", err)
		return
	}
	morePeers := peers.MoreWorkPeers(localDiff)

	peerCount := len(morePeers)
	if peerCount > maxBodySyncPeers {
		peerCount = maxBodySyncPeers
	}
	blockCount := peerCount * blocksPerPeer

	hashesToGet := make([]common.Hash, 0, blockCount)
	for _, hash := range hashes {
		if len(hashesToGet) >= blockCount {
			break
		}
		has, err := chain.HasBlock(hash)
		if err != nil {
			log.Debugf("body_sync: failed checking stored block %s: %v", hash.Short(), err)
			continue
		}
		if has || chain.IsOrphan(hash) {
			continue
		}
		hashesToGet = append(hashesToGet, hash)
	}

	if len(hashesToGet) == 0 {
		return
	}

	log.Debugf("block_sync: %d/%d requesting %d blocks from %d peers",
		bodyHead.Height, headerHead.Height, len(hashesToGet), peerCount)

	for i, hash := range hashesToGet {
		if len(morePeers) == 0 {
			break
		}
		// a (possibly different) more-work peer services each hash.
		peer := morePeers[i%len(morePeers)]
		reader, ok := peer.TryRead()
		if !ok {
			continue
		}
		if err := reader.SendBlockRequest(hash); err != nil {
			log.Debugf("body_sync: skipped request to %s: %v", reader.Address(), err)
		}
		reader.Release()
	}
}

// walkToCommonAncestor walks previous-hash pointers starting at
// fromHash back until a header already on the current validated chain is
// found, collecting hashes in descending-height (walk) order.
func walkToCommonAncestor(chain Chain, fromHash common.Hash, log Logger) []common.Hash {
	var collected []common.Hash
	currentHash := fromHash

	for {
		header, err := chain.GetBlockHeader(currentHash)
		if err != nil || header == nil {
			break
		}
		onChain, err := chain.IsOnCurrentChain(header)
		if err != nil {
			log.Debugf("body_sync: is_on_current_chain failed for %s: %v", header.Hash.Short(), err)
		}
		if onChain {
			break
		}
		collected = append(collected, header.Hash)
		currentHash = header.PreviousHash
	}
	return collected
}

func reverseHashes(hashes []common.Hash) {
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}
}
