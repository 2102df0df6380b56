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
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	benchDuration    time.Duration
	benchPayloadSize int
)

// benchCmd is a thin throughput benchmark: push one task, drain the queue,
// and repeat for a fixed duration, reporting tasks/sec once per second.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a throughput benchmark: push and drain tasks for a fixed duration, reporting tasks/sec.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}

		ctx := context.Background()
		payload := bytes.Repeat([]byte("x"), benchPayloadSize)

		fmt.Printf("Running throughput benchmark for %s\n", benchDuration)

		start := time.Now()
		lastReport := start
		var total, perSecond int

		for {
			now := time.Now()
			if now.Sub(start) >= benchDuration {
				break
			}

			if _, err := e.Push(payload); err != nil {
				return err
			}

			for {
				task, err := e.Pop(ctx)
				if err != nil {
					return err
				}
				if task == nil {
					break
				}
				if err := e.Done(task); err != nil {
					return err
				}
				total++
				perSecond++
			}

			if now.Sub(lastReport) >= time.Second {
				fmt.Printf("%ds: %d tasks/sec\n", int(now.Sub(start).Seconds()), perSecond)
				perSecond = 0
				lastReport = now
			}
		}

		elapsed := time.Since(start)
		fmt.Printf("\nRan for %.2f seconds\n", elapsed.Seconds())
		fmt.Printf("Total tasks processed: %d\n", total)
		fmt.Printf("Overall throughput: %.2f tasks/sec\n", float64(total)/elapsed.Seconds())
		return nil
	},
}

func init() {
	benchCmd.Flags().DurationVar(&benchDuration, "duration", 10*time.Second, "Duration to run the benchmark.")
	benchCmd.Flags().IntVar(&benchPayloadSize, "payload-size", 100, "Size in bytes of the benchmark payload.")
	rootCmd.AddCommand(benchCmd)
}
