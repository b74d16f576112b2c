// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

import "time"

// Clock is the seam the driver sleeps and reads time through, so cadence
// behavior is testable without real 1s/30s/5m sleeps. systemClock
// satisfies it with the real time package; tests substitute a fake that
// advances on demand.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the production Clock, backed by the time package.
var SystemClock Clock = systemClock{}
