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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var popCmd = &cobra.Command{
	Use:   "pop",
	Short: "Claim one task, printing its ID and payload; the task remains in-progress until done/fail is run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}

		task, err := e.Pop(context.Background())
		if err != nil {
			return err
		}
		if task == nil {
			fmt.Fprintln(os.Stderr, "no task available")
			os.Exit(1)
		}

		fmt.Println(task.ID)
		os.Stdout.Write(task.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(popCmd)
}
