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

// Package cmd is femtoqueue's driver: a thin cobra CLI that exercises the
// queue package's API, carrying no logic of its own beyond flag parsing and
// calling into package queue.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jantuomi/femtoqueue/cfg"
	"github.com/jantuomi/femtoqueue/internal/logger"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error

	config cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "femtoqueue",
	Short: "A minimal, multi-node, durable task queue coordinated through a shared filesystem.",
	Long: `femtoqueue is a durable task queue that uses a shared filesystem as its
sole coordination medium. Producers push opaque byte payloads; worker nodes
claim, process, and complete them. Crashed or hung workers don't cause
permanent task loss: their claimed but unfinished tasks are reclaimed by
peers after a staleness timeout.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if err := viper.Unmarshal(&config); err != nil {
			return fmt.Errorf("parsing configuration: %w", err)
		}
		if err := config.Validate(); err != nil {
			return err
		}
		return logger.Init(logger.Config{
			File:     config.Log.File,
			Format:   config.Log.Format,
			Severity: config.Log.Severity,
			Rotate: logger.RotateConfig{
				MaxFileSizeMB:   config.Log.MaxFileSizeMB,
				BackupFileCount: config.Log.BackupFileCount,
				Compress:        config.Log.Compress,
			},
		})
	},
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	err := rootCmd.Execute()
	if closeErr := logger.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
	}
}
