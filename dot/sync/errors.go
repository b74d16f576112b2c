// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import "errors"

// Transient peer errors are not modelled as errors at all: a failed
// TryRead is a (PeerReader, false) return, handled inline and never
// propagated; header and fast sync log it at debug, needs_syncing and body
// sync skip it without logging.

// errChainStoreFatal marks a chain-store read that the driver treats as
// fatal: head()/header_head() are unusable without it.
var errChainStoreFatal = errors.New("sync: fatal chain store read failure")
