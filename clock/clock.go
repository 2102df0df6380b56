// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clock provides an injectable source of wall-clock time, so that
// components with timeout- or deadline-based behavior (the stale reclaimer
// in particular) can be driven deterministically in tests.
package clock

import "time"

// Clock is the interface implemented by all clock sources in this package.
// Components that need to read the current time or wait for a duration to
// elapse should depend on a Clock rather than calling time.Now/time.After
// directly.
type Clock interface {
	// Now returns the current time according to this clock.
	Now() time.Time

	// After returns a channel on which the current time (according to this
	// clock) is sent once the given duration has elapsed.
	After(d time.Duration) <-chan time.Time
}

var _ Clock = RealClock{}
var _ Clock = (*SimulatedClock)(nil)
var _ Clock = (*FakeClock)(nil)
