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

package cmd

import (
	"time"

	"github.com/jantuomi/femtoqueue/internal/metrics"
	"github.com/jantuomi/femtoqueue/queue"
)

func newEngine() (*queue.Engine, error) {
	rec, err := metrics.NewRecorder()
	if err != nil {
		return nil, err
	}
	return queue.New(queue.Options{
		Root:         config.Root,
		NodeID:       config.NodeID,
		StaleTimeout: time.Duration(config.StaleTimeoutMs) * time.Millisecond,
		Metrics:      rec,
	})
}
