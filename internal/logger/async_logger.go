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

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger decouples log writes from whatever goroutine produced them by
// buffering writes on a channel and flushing them from a single background
// goroutine. This matters on the queue's hot path: Push/Pop/Done/Fail each
// log one line, and none of them should block on file or rotation I/O.
// When the buffer is full, the newest message is dropped and a warning is
// printed to stderr rather than blocking the caller.
type AsyncLogger struct {
	w       io.WriteCloser
	msgs    chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
	dropped int
}

// NewAsyncLogger starts a background goroutine that writes everything sent
// to the returned AsyncLogger into w, in order. bufferSize bounds how many
// pending writes may queue before new writes start being dropped.
func NewAsyncLogger(w io.WriteCloser, bufferSize int) *AsyncLogger {
	al := &AsyncLogger{
		w:    w,
		msgs: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	al.wg.Add(1)
	go al.run()
	return al
}

func (al *AsyncLogger) run() {
	defer al.wg.Done()
	for msg := range al.msgs {
		_, _ = al.w.Write(msg)
	}
	close(al.done)
}

// Write implements io.Writer. p is copied before being enqueued, since the
// caller is free to reuse its buffer immediately after Write returns.
func (al *AsyncLogger) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)

	select {
	case al.msgs <- buf:
		return len(p), nil
	default:
		al.dropped++
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
		return len(p), nil
	}
}

// Close stops accepting new writes, waits for every already-queued message
// to be flushed, and closes the underlying writer.
func (al *AsyncLogger) Close() error {
	close(al.msgs)
	al.wg.Wait()
	return al.w.Close()
}
