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

package queue

// Task is an immutable claimed unit of work: a sortable ID (see
// internal/idgen) and the opaque payload that was passed to Push. The
// payload is never interpreted by the engine — it is written and read back
// as raw bytes, with no framing or encoding added.
type Task struct {
	ID   string
	Data []byte
}
