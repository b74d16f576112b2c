// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package peerset

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/libp2p/go-libp2p/core/peer"
)

// Dialer reconnects to a peer address on a backoff schedule after a
// disconnect, ambient peer-manager plumbing outside dot/sync's scope but
// needed for the demo peerset to behave like a real fleet over time.
type Dialer struct {
	dial func(ctx context.Context, address peer.ID) (Sender, error)

	backoff *backoff.Backoff
}

// NewDialer builds a Dialer whose backoff schedule runs from min to max,
// doubling each attempt, the same shape jpillora/backoff is built for.
func NewDialer(min, max time.Duration, dial func(ctx context.Context, address peer.ID) (Sender, error)) *Dialer {
	return &Dialer{
		dial: dial,
		backoff: &backoff.Backoff{
			Min:    min,
			Max:    max,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Reconnect retries dial until it succeeds or ctx is cancelled, sleeping on
// the backoff schedule between attempts and resetting it on success.
func (d *Dialer) Reconnect(ctx context.Context, address peer.ID) (Sender, error) {
	for {
		sender, err := d.dial(ctx, address)
		if err == nil {
			d.backoff.Reset()
			return sender, nil
		}

		wait := d.backoff.Duration()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("peerset: dial %s cancelled after %v: %w", address, wait, ctx.Err())
		case <-time.After(wait):
		}
	}
}
