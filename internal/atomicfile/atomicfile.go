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

// Package atomicfile writes queue payloads so that a concurrent Pop never
// observes a partially written file: write to a temp name in the
// destination directory, fsync, then rename into place.
package atomicfile

import (
	"os"

	"github.com/google/renameio/v2"
)

// Write atomically creates path with the given contents. The temp file used
// is created in the same directory as path (renameio requires this, since
// the final rename must be same-filesystem), so it is never visible under
// the name a reclaimer or a concurrent Pop would recognize as a task ID.
func Write(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}
