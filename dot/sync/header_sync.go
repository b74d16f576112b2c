// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

// headerSync requests a batch of headers from the most-work peer, using a
// locator built from sync_head, when that peer's advertised total
// difficulty exceeds our header head's. The sync head is reset by the
// chain store as new headers are accepted; it is only read here.
func headerSync(peers PeerSet, chain Chain, log Logger) {
	headerHead, err := chain.HeaderHead()
	if err != nil {
		log.Debugf("header_sync: failed to read header head: %v", err)
		return
	}

	peer, ok := peers.MostWorkPeer()
	if !ok {
		return
	}

	reader, ok := peer.TryRead()
	if !ok {
		log.Debugf("header_sync: failed to get a non-blocking read on the most-work peer")
		return
	}
	defer reader.Release()

	if !reader.AdvertisedTotalDifficulty().GreaterThan(headerHead.TotalDifficulty) {
		return
	}

	syncHead, err := chain.SyncHead()
	if err != nil {
		log.Debugf("header_sync: failed to read sync head: %v", err)
		return
	}

	locator, err := BuildLocator(chain, syncHead)
	if err != nil {
		log.Debugf("header_sync: failed to build locator: %v", err)
		return
	}

	log.Debugf("sync: request_headers: asking %s for headers, %v", reader.Address(), locator)
	if err := reader.SendHeaderRequest(locator); err != nil {
		log.Debugf("header_sync: send_header_request to %s failed: %v", reader.Address(), err)
	}
}
