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

package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jantuomi/femtoqueue/clock"
	"github.com/jantuomi/femtoqueue/queue"
)

type QueueTest struct {
	suite.Suite
	dir string
	ctx context.Context
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueTest))
}

func (t *QueueTest) SetupTest() {
	t.dir = t.T().TempDir()
	t.ctx = context.Background()
}

func (t *QueueTest) newEngine(nodeID string) *queue.Engine {
	e, err := queue.New(queue.Options{Root: t.dir, NodeID: nodeID})
	require.NoError(t.T(), err)
	return e
}

// TestBasicRoundTrip covers push, pop, done, then an empty queue.
func (t *QueueTest) TestBasicRoundTrip() {
	q := t.newEngine("node1")

	payload, err := json.Marshal(map[string]string{"foo": "bar"})
	require.NoError(t.T(), err)
	id, err := q.Push(payload)
	require.NoError(t.T(), err)
	assert.NotEmpty(t.T(), id)

	task, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), task)
	var decoded map[string]string
	require.NoError(t.T(), json.Unmarshal(task.Data, &decoded))
	assert.Equal(t.T(), "bar", decoded["foo"])

	require.NoError(t.T(), q.Done(task))

	again, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	assert.Nil(t.T(), again)
}

// TestCrashRecoverySameNode covers a node resuming its own orphaned
// in-progress task after being reconstructed with the same node-id.
func (t *QueueTest) TestCrashRecoverySameNode() {
	q1 := t.newEngine("node1")
	_, err := q1.Push([]byte("stuck"))
	require.NoError(t.T(), err)

	task, err := q1.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), task)

	// Discard q1 without completing the task: simulate a crash.
	q2 := t.newEngine("node1")

	resumed, err := q2.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), resumed)
	assert.Equal(t.T(), task.ID, resumed.ID)
	assert.Equal(t.T(), []byte("stuck"), resumed.Data)

	require.NoError(t.T(), q2.Done(resumed))

	empty, err := q2.Pop(t.ctx)
	require.NoError(t.T(), err)
	assert.Nil(t.T(), empty)
}

// TestStaleReclaimAcrossNodes covers a peer reclaiming a task once it's
// older than the stale timeout.
func (t *QueueTest) TestStaleReclaimAcrossNodes() {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	staleTimeout := 100 * time.Millisecond

	node1, err := queue.New(queue.Options{
		Root: t.dir, NodeID: "node1", StaleTimeout: staleTimeout, Clock: sc,
	})
	require.NoError(t.T(), err)
	node2, err := queue.New(queue.Options{
		Root: t.dir, NodeID: "node2", StaleTimeout: staleTimeout, Clock: sc,
	})
	require.NoError(t.T(), err)

	_, err = node1.Push([]byte("stuck"))
	require.NoError(t.T(), err)
	claimed, err := node1.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), claimed)

	notYet, err := node2.Pop(t.ctx)
	require.NoError(t.T(), err)
	assert.Nil(t.T(), notYet)

	sc.AdvanceTime(10 * time.Second)

	revived, err := node2.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), revived)
	assert.Equal(t.T(), []byte("stuck"), revived.Data)
}

// TestFailTerminality covers a failed task landing in the failed
// directory and never being popped again.
func (t *QueueTest) TestFailTerminality() {
	q := t.newEngine("node1")
	id, err := q.Push([]byte("will fail"))
	require.NoError(t.T(), err)

	task, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), task)

	require.NoError(t.T(), q.Fail(task))

	failedPath := filepath.Join(t.dir, "failed", id)
	_, statErr := os.Stat(failedPath)
	assert.NoError(t.T(), statErr)

	again, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	assert.Nil(t.T(), again)
}

// TestDoneTerminality covers a completed task landing in the done
// directory and never being popped again.
func (t *QueueTest) TestDoneTerminality() {
	q := t.newEngine("node1")
	id, err := q.Push([]byte("complete me"))
	require.NoError(t.T(), err)

	task, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), task)

	require.NoError(t.T(), q.Done(task))

	donePath := filepath.Join(t.dir, "done", id)
	_, statErr := os.Stat(donePath)
	assert.NoError(t.T(), statErr)

	again, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	assert.Nil(t.T(), again)
}

// TestFIFOWithinOneNode covers ordering: pushes from one node are popped
// back in the same order.
func (t *QueueTest) TestFIFOWithinOneNode() {
	q := t.newEngine("node1")

	const numTasks = 100
	for i := 0; i < numTasks; i++ {
		_, err := q.Push([]byte(strconv.Itoa(i)))
		require.NoError(t.T(), err)
	}

	for want := 0; want < numTasks; want++ {
		task, err := q.Pop(t.ctx)
		require.NoError(t.T(), err)
		require.NotNil(t.T(), task)
		got, err := strconv.Atoi(string(task.Data))
		require.NoError(t.T(), err)
		assert.Equal(t.T(), want, got)
		require.NoError(t.T(), q.Done(task))
	}

	empty, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	assert.Nil(t.T(), empty)
}

func (t *QueueTest) TestReservedNodeIDRejected() {
	for _, name := range []string{"pending", "done", "failed"} {
		_, err := queue.New(queue.Options{Root: t.dir, NodeID: name})
		assert.ErrorIs(t.T(), err, queue.ErrInvalidNodeID)
	}
}

func (t *QueueTest) TestNegativeStaleTimeoutRejected() {
	_, err := queue.New(queue.Options{Root: t.dir, NodeID: "node1", StaleTimeout: -time.Second})
	assert.ErrorIs(t.T(), err, queue.ErrInvalidConfig)
}

func (t *QueueTest) TestDoneOnTaskNotInProgress() {
	q := t.newEngine("node1")
	id, err := q.Push([]byte("x"))
	require.NoError(t.T(), err)

	// Never popped, so it isn't in this node's in-progress directory.
	err = q.Done(&queue.Task{ID: id})

	var notInProgress *queue.NotInProgressError
	assert.True(t.T(), errors.As(err, &notInProgress))
}

func (t *QueueTest) TestEmptyPayloadRoundTrips() {
	q := t.newEngine("node1")
	id, err := q.Push(nil)
	require.NoError(t.T(), err)
	assert.NotEmpty(t.T(), id)

	task, err := q.Pop(t.ctx)
	require.NoError(t.T(), err)
	require.NotNil(t.T(), task)
	assert.Empty(t.T(), task.Data)
	require.NoError(t.T(), q.Done(task))
}
