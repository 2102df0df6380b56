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
	"github.com/spf13/cobra"

	"github.com/jantuomi/femtoqueue/queue"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task this node has in progress as done.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		return e.Done(&queue.Task{ID: args[0]})
	},
}

var failCmd = &cobra.Command{
	Use:   "fail <task-id>",
	Short: "Mark a task this node has in progress as failed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		return e.Fail(&queue.Task{ID: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(failCmd)
}
