// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sync

// Logger is the leveled, printf-style logging surface the sync core logs
// through. internal/log.Logger satisfies it; tests substitute a recording
// fake so log lines can be asserted on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Criticalf(format string, args ...any)
}
