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

// Package idgen produces the lexicographically sortable task IDs used as
// queue file names: "<microsecond-timestamp>_<random-suffix>".
package idgen

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/jantuomi/femtoqueue/clock"
)

// Generator produces task IDs against an injectable clock, so that tests
// can control the timestamp prefix without sleeping.
type Generator struct {
	clock clock.Clock
}

// New returns a Generator that reads timestamps from c.
func New(c clock.Clock) *Generator {
	return &Generator{clock: c}
}

// Next returns a new task ID. The prefix is the current time in
// microseconds since the epoch, formatted with no leading zeros; the suffix
// is 12 hex digits of cryptographic-quality randomness, deliberately not
// derived from the timestamp so that IDs generated in the same microsecond
// by different processes don't collide.
func (g *Generator) Next() string {
	us := g.clock.Now().UnixMicro()
	return strconv.FormatInt(us, 10) + "_" + randomSuffix()
}

// randomSuffix returns 12 hex characters of CSPRNG output. A version-4 UUID
// devotes its low 48 bits to randomness, so its last 12 hex digits serve
// directly as the suffix without a separate crypto/rand draw.
func randomSuffix() string {
	id := uuid.New()
	s := id.String()
	// Canonical UUID string form is 8-4-4-4-12 hex digits separated by
	// hyphens; the trailing group is exactly the 12 digits we want.
	return s[len(s)-12:]
}
