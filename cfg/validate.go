// Copyright 2024 Google Inc. All Rights Reserved.
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

package cfg

import (
	"fmt"
	"slices"
)

var validSeverities = []string{TRACE, DEBUG, INFO, WARNING, ERROR, OFF}

var validFormats = []string{"text", "json"}

// Validate checks the fields BindFlags can't enforce by itself: required
// values and enum membership. Reserved-node-id rejection is intentionally
// left to queue.New, which owns that check at queue construction time.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.NodeID == "" {
		return fmt.Errorf("node-id is required")
	}
	if c.StaleTimeoutMs <= 0 {
		return fmt.Errorf("stale-timeout-ms must be positive, got %d", c.StaleTimeoutMs)
	}
	if !slices.Contains(validSeverities, c.Log.Severity) {
		return fmt.Errorf("log.severity must be one of %v, got %q", validSeverities, c.Log.Severity)
	}
	if !slices.Contains(validFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v, got %q", validFormats, c.Log.Format)
	}
	return nil
}
