// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import "github.com/maciekf/grin-sync/lib/common"

// fastSyncSafetyMargin keeps the requested txhashset snapshot comfortably
// inside any small local reorg window.
const fastSyncSafetyMargin = 20

// fastSync identifies a header horizon-20 blocks behind header_head's
// parent, and requests the txhashset snapshot at that header from the
// most-work peer.
func fastSync(peers PeerSet, chain Chain, protocol ProtocolParams, headerHead common.Tip, log Logger) {
	peer, ok := peers.MostWorkPeer()
	if !ok {
		return
	}
	reader, ok := peer.TryRead()
	if !ok {
		log.Debugf("fast_sync: failed to get a non-blocking read on the most-work peer")
		return
	}
	defer reader.Release()

	log.Debugf("Header head before txhashset request: %d / %s", headerHead.Height, headerHead.LastBlockHash.Short())

	horizon := protocol.CutThroughHorizon()
	stepsBack := uint64(0)
	if horizon > fastSyncSafetyMargin {
		stepsBack = horizon - fastSyncSafetyMargin
	}

	header, err := chain.GetBlockHeader(headerHead.PreviousBlockHash)
	if err != nil || header == nil {
		log.Debugf("fast_sync: failed to read header_head.previous: %v", err)
		return
	}

	for i := uint64(0); i < stepsBack; i++ {
		parent, err := chain.GetBlockHeader(header.PreviousHash)
		if err != nil || parent == nil {
			log.Debugf("fast_sync: walk terminated early at height %d: %v", header.Height, err)
			return
		}
		header = parent
	}

	if err := reader.SendTxHashSetRequest(header.Height, header.Hash); err != nil {
		log.Debugf("fast_sync: send_txhashset_request to %s failed: %v", reader.Address(), err)
	}
}
