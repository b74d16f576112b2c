// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maciekf/grin-sync/dot/sync"
)

// statusResponse is the JSON view of the driver's advisory state, served
// from /status for operators and the gsyncd status CLI subcommand alike.
type statusResponse struct {
	CurrentlySyncing          bool   `json:"currently_syncing"`
	AwaitingPeers             bool   `json:"awaiting_peers"`
	HighestObservedPeerHeight uint64 `json:"highest_observed_peer_height"`
	ConnectedPeers            int    `json:"connected_peers"`
}

// peerCounter is the narrow surface status.go needs from a peer registry,
// satisfied by *peerset.PeerSet without an import cycle back into it.
type peerCounter interface {
	Len() int
}

func newStatusServer(addr string, state *sync.SyncState, peers peerCounter) *http.Server {
	router := mux.NewRouter()

	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			CurrentlySyncing:          state.CurrentlySyncing(),
			AwaitingPeers:             state.AwaitingPeers(),
			HighestObservedPeerHeight: state.HighestObservedPeerHeight(),
			ConnectedPeers:            peers.Len(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}
