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

// Package reclaim implements stale-claim recovery: periodically scanning
// peer in-progress directories and moving overdue tasks back to pending.
// The staleness test is keyed on each task ID's embedded creation
// timestamp, not filesystem mtime — this makes it immune to mtime changes
// from backup tools and to clock drift between nodes, since every node
// compares the same embedded value against its own clock.
package reclaim

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jantuomi/femtoqueue/clock"
	"github.com/jantuomi/femtoqueue/internal/layout"
	"github.com/jantuomi/femtoqueue/internal/logger"
	"github.com/jantuomi/femtoqueue/internal/metrics"
)

// Reclaimer rate-limits itself to one scan per staleTimeout, tracked via
// lastCheck. The zero value (lastCheck unset) always scans on its first
// invocation, which is intentional: on process restart, stale tasks left
// behind by a crashed peer are detected as soon as the queue is used again.
type Reclaimer struct {
	layout       *layout.Layout
	clock        clock.Clock
	staleTimeout time.Duration
	metrics      *metrics.Recorder

	lastCheck    time.Time
	lastCheckSet bool
}

// New returns a Reclaimer for one node's Layout. rec may be nil.
func New(l *layout.Layout, c clock.Clock, staleTimeout time.Duration, rec *metrics.Recorder) *Reclaimer {
	return &Reclaimer{
		layout:       l,
		clock:        c,
		staleTimeout: staleTimeout,
		metrics:      rec,
	}
}

// MaybeScan runs a scan if the rate limit allows it; otherwise it returns
// immediately. Called at the head of every Pop.
func (r *Reclaimer) MaybeScan(ctx context.Context) error {
	now := r.clock.Now()
	if r.lastCheckSet && now.Sub(r.lastCheck) < r.staleTimeout {
		return nil
	}
	r.lastCheck = now
	r.lastCheckSet = true

	start := now
	reclaimed, err := r.scan(now)
	r.metrics.RecordScanDuration(ctx, r.clock.Now().Sub(start).Seconds())
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		logger.Infof("stale reclaimer: moved %d task(s) back to pending", reclaimed)
	}
	return nil
}

func (r *Reclaimer) scan(now time.Time) (int64, error) {
	entries, err := os.ReadDir(r.layout.Root)
	if err != nil {
		return 0, err
	}

	var reclaimed int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if layout.IsReserved(name) || name == r.layout.NodeID {
			continue
		}

		n, err := r.scanPeerDir(r.layout.PeerDir(name), now)
		if err != nil {
			return reclaimed, err
		}
		reclaimed += n
	}

	r.metrics.RecordReclaim(reclaimed)
	return reclaimed, nil
}

func (r *Reclaimer) scanPeerDir(dir string, now time.Time) (int64, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var reclaimed int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		taskFile := f.Name()
		created, ok := creationTime(taskFile)
		if !ok {
			continue
		}
		if now.Sub(created) < r.staleTimeout {
			continue
		}

		src := filepath.Join(dir, taskFile)
		dst := filepath.Join(r.layout.PendingDir, taskFile)
		if err := os.Rename(src, dst); err != nil {
			if os.IsNotExist(err) {
				// Another node reclaimed or completed it first.
				r.metrics.RecordClaimRace()
				continue
			}
			return reclaimed, err
		}
		reclaimed++
	}
	return reclaimed, nil
}

// creationTime parses the microsecond timestamp embedded in a task ID's
// prefix, per the "<us>_<suffix>" format from internal/idgen.
func creationTime(taskFile string) (time.Time, bool) {
	prefix, _, found := strings.Cut(taskFile, "_")
	if !found {
		return time.Time{}, false
	}
	us, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMicro(us), true
}
