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

// Package layout owns the on-disk directory structure that is the queue's
// sole coordination medium: one pending directory, one directory per
// terminal state, and one directory per participating node. Per-node
// in-progress directories are the linchpin of the design — they let peers
// read "who owns this task" with a plain listdir, with no lock file or
// database involved.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Reserved directory names that may not be used as a node-id.
const (
	Pending = "pending"
	Done    = "done"
	Failed  = "failed"
)

// dirPerm is the mode the queue's fixed subdirectories are created with.
const dirPerm = 0o755

// IsReserved reports whether name collides with one of the queue's fixed
// subdirectories and therefore cannot be used as a node-id.
func IsReserved(name string) bool {
	switch name {
	case Pending, Done, Failed:
		return true
	default:
		return false
	}
}

// Layout resolves the fixed set of paths under root for one node.
type Layout struct {
	Root       string
	NodeID     string
	PendingDir string
	DoneDir    string
	FailedDir  string
	NodeDir    string
}

// New validates node-id and returns a Layout describing root's directory
// structure for it; it does not touch the filesystem. Callers that intend
// to operate on the queue should call Ensure afterward.
func New(root, nodeID string) (*Layout, error) {
	if IsReserved(nodeID) {
		return nil, fmt.Errorf("node-id %q is reserved", nodeID)
	}
	return &Layout{
		Root:       root,
		NodeID:     nodeID,
		PendingDir: filepath.Join(root, Pending),
		DoneDir:    filepath.Join(root, Done),
		FailedDir:  filepath.Join(root, Failed),
		NodeDir:    filepath.Join(root, nodeID),
	}, nil
}

// Ensure creates root and its required subdirectories if they don't already
// exist. It is idempotent: pre-existing directories are left untouched.
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.PendingDir, l.NodeDir, l.DoneDir, l.FailedDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// PeerDir returns the in-progress directory for an arbitrary node name,
// used by the stale reclaimer when scanning peer directories.
func (l *Layout) PeerDir(nodeID string) string {
	return filepath.Join(l.Root, nodeID)
}
