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

import "fmt"

// ErrInvalidNodeID is returned by New when node-id collides with a reserved
// directory name (pending, done, failed).
var ErrInvalidNodeID = fmt.Errorf("node-id is reserved")

// ErrInvalidConfig is returned by New when stale-timeout is negative. A zero
// stale-timeout is not an error; New replaces it with DefaultStaleTimeout.
var ErrInvalidConfig = fmt.Errorf("invalid queue configuration")

// NotInProgressError is returned by Done/Fail when the task is no longer in
// this node's in-progress directory: it was already completed, reclaimed by
// a peer's stale reclaimer, or the caller passed a stale Task handle.
type NotInProgressError struct {
	ID string
}

func (e *NotInProgressError) Error() string {
	return fmt.Sprintf("task %s is not in progress on this node", e.ID)
}

// IOError wraps an unexpected filesystem error surfaced by a queue
// operation. It is never used for the expected not-found outcome of a
// losing claim race; that case is absorbed internally (see engine.go).
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("femtoqueue: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioErrorf(op string, err error) error {
	return &IOError{Op: op, Err: err}
}
