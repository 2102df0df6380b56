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

// Package queue is the core of femtoqueue: a durable, multi-node task queue
// coordinated entirely through a shared filesystem, using atomic
// same-directory rename as its sole mutual-exclusion primitive. There is no
// lock server and no database; "who owns this task" is answered by which
// directory currently holds its file.
package queue

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jantuomi/femtoqueue/clock"
	"github.com/jantuomi/femtoqueue/internal/atomicfile"
	"github.com/jantuomi/femtoqueue/internal/idgen"
	"github.com/jantuomi/femtoqueue/internal/layout"
	"github.com/jantuomi/femtoqueue/internal/logger"
	"github.com/jantuomi/femtoqueue/internal/metrics"
	"github.com/jantuomi/femtoqueue/internal/reclaim"
)

// filePerm is the mode task payload files are created with.
const filePerm = 0o644

// DefaultStaleTimeout is used when Options.StaleTimeout is zero.
const DefaultStaleTimeout = 30 * time.Second

// Options configures a new Engine.
type Options struct {
	// Root is the base directory the queue coordinates through. Created if
	// it doesn't already exist.
	Root string
	// NodeID is this node's exclusive directory name for claimed tasks. It
	// must not be "pending", "done", or "failed".
	NodeID string
	// StaleTimeout is the grace period before a peer may reclaim a task
	// this node claimed but hasn't completed. Defaults to
	// DefaultStaleTimeout if zero.
	StaleTimeout time.Duration
	// Clock is the time source used for ID generation and staleness
	// checks. Defaults to clock.RealClock{} if nil.
	Clock clock.Clock
	// Metrics is an optional recorder for push/pop/done/fail/reclaim
	// counters. A nil value disables instrumentation.
	Metrics *metrics.Recorder
}

// Engine is one node's handle on a queue rooted at Options.Root. It holds
// no shared state beyond its own rate-limiting timestamp for stale scans;
// all durable state lives on disk. An Engine is not safe for concurrent use
// by multiple goroutines of the same process — construct one Engine per
// goroutine/thread, or serialize access externally.
type Engine struct {
	layout  *layout.Layout
	clock   clock.Clock
	ids     *idgen.Generator
	reclaim *reclaim.Reclaimer
	metrics *metrics.Recorder
}

// New constructs an Engine, validating opts and creating the directory
// layout. It returns ErrInvalidNodeID if NodeID collides with a reserved
// name, ErrInvalidConfig if StaleTimeout is negative, or an *IOError if the
// directory layout can't be created.
func New(opts Options) (*Engine, error) {
	if layout.IsReserved(opts.NodeID) {
		return nil, ErrInvalidNodeID
	}
	if opts.StaleTimeout < 0 {
		return nil, ErrInvalidConfig
	}
	staleTimeout := opts.StaleTimeout
	if staleTimeout == 0 {
		staleTimeout = DefaultStaleTimeout
	}
	c := opts.Clock
	if c == nil {
		c = clock.RealClock{}
	}

	l, err := layout.New(opts.Root, opts.NodeID)
	if err != nil {
		return nil, ErrInvalidNodeID
	}
	if err := l.Ensure(); err != nil {
		return nil, ioErrorf("construct", err)
	}

	return &Engine{
		layout:  l,
		clock:   c,
		ids:     idgen.New(c),
		reclaim: reclaim.New(l, c, staleTimeout, opts.Metrics),
		metrics: opts.Metrics,
	}, nil
}

// Push writes data as a new pending task and returns its ID. The write is
// atomic against observation by a concurrent Pop: data lands under a
// same-directory temp name and is only renamed to its final pending path
// once fully written (see internal/atomicfile).
func (e *Engine) Push(data []byte) (string, error) {
	id := e.ids.Next()
	dst := filepath.Join(e.layout.PendingDir, id)
	if err := atomicfile.Write(dst, data, filePerm); err != nil {
		return "", ioErrorf("push", err)
	}
	e.metrics.RecordPush()
	logger.Debugf("push: id=%s bytes=%d", id, len(data))
	return id, nil
}

// Pop claims and returns one task, or (nil, nil) if none are available. It
// first runs the rate-limited stale reclaimer, then repeatedly selects a
// candidate and attempts to rename it into this node's in-progress
// directory; a losing claim race (another node renamed first) is retried
// transparently, never surfaced to the caller.
func (e *Engine) Pop(ctx context.Context) (*Task, error) {
	if err := e.reclaim.MaybeScan(ctx); err != nil {
		return nil, ioErrorf("pop: stale scan", err)
	}

	for {
		srcDir, id, source, err := e.selectCandidate()
		if err != nil {
			return nil, ioErrorf("pop: select candidate", err)
		}
		if id == "" {
			return nil, nil
		}

		src := filepath.Join(srcDir, id)
		dst := filepath.Join(e.layout.NodeDir, id)
		if err := os.Rename(src, dst); err != nil {
			if os.IsNotExist(err) {
				e.metrics.RecordClaimRace()
				continue
			}
			return nil, ioErrorf("pop: claim", err)
		}

		data, err := os.ReadFile(dst)
		if err != nil {
			return nil, ioErrorf("pop: read claimed task", err)
		}

		e.metrics.RecordPop(source)
		logger.Debugf("pop: id=%s source=%s bytes=%d", id, source, len(data))
		return &Task{ID: id, Data: data}, nil
	}
}

// selectCandidate picks the next task to claim: this node's own
// in-progress directory takes priority (recovering orphans from a prior
// crash of this same node-id before claiming fresh pending work), then the
// shared pending directory. Lexicographically minimum selection on
// sortable IDs yields approximate FIFO.
func (e *Engine) selectCandidate() (dir string, id string, source metrics.PopSource, err error) {
	ownID, err := minEntry(e.layout.NodeDir)
	if err != nil {
		return "", "", "", err
	}
	if ownID != "" {
		return e.layout.NodeDir, ownID, metrics.PopSourceOwnOrphan, nil
	}

	pendingID, err := minEntry(e.layout.PendingDir)
	if err != nil {
		return "", "", "", err
	}
	if pendingID != "" {
		return e.layout.PendingDir, pendingID, metrics.PopSourcePending, nil
	}

	return "", "", "", nil
}

func minEntry(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var min string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		// Only "<us>_<suffix>" names are tasks; in-flight atomicfile temp
		// files and other stray entries are skipped.
		prefix, _, found := strings.Cut(name, "_")
		if !found {
			continue
		}
		if _, err := strconv.ParseUint(prefix, 10, 64); err != nil {
			continue
		}
		if min == "" || name < min {
			min = name
		}
	}
	return min, nil
}

// Done marks task as successfully completed, an atomic, terminal
// transition: the task file moves from this node's in-progress directory
// to done and is never moved again by the engine.
func (e *Engine) Done(task *Task) error {
	return e.complete(task, e.layout.DoneDir, metrics.OutcomeDone)
}

// Fail marks task as failed, an atomic, terminal transition: the task file
// moves from this node's in-progress directory to failed and is never
// moved again by the engine.
func (e *Engine) Fail(task *Task) error {
	return e.complete(task, e.layout.FailedDir, metrics.OutcomeFailed)
}

func (e *Engine) complete(task *Task, destDir string, outcome metrics.Outcome) error {
	src := filepath.Join(e.layout.NodeDir, task.ID)
	dst := filepath.Join(destDir, task.ID)
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return &NotInProgressError{ID: task.ID}
		}
		return ioErrorf("complete", err)
	}
	e.metrics.RecordCompletion(outcome)
	logger.Debugf("complete: id=%s outcome=%s", task.ID, outcome)
	return nil
}
