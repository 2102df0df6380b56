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

// Package cfg defines femtoqueue's configuration surface and binds it to
// command-line flags and an optional YAML config file: a BindFlags function
// registers each field against pflag and viper, and viper.Unmarshal
// produces the final Config.
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for one node's queue engine
// and CLI.
type Config struct {
	Root           string `yaml:"root" mapstructure:"root"`
	NodeID         string `yaml:"node-id" mapstructure:"node-id"`
	StaleTimeoutMs int    `yaml:"stale-timeout-ms" mapstructure:"stale-timeout-ms"`

	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig controls internal/logger's default logger.
type LogConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`
	Severity string `yaml:"severity" mapstructure:"severity"`
	File     string `yaml:"file" mapstructure:"file"`

	MaxFileSizeMB   int  `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count" mapstructure:"backup-file-count"`
	Compress        bool `yaml:"compress" mapstructure:"compress"`
}

// MetricsConfig controls the optional Prometheus scrape endpoint.
type MetricsConfig struct {
	// Addr is the listen address for the "serve-metrics" subcommand, e.g.
	// ":9090". Empty disables it.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Severity name constants accepted by Log.Severity, mirrored from
// internal/logger so callers don't need to import it just to validate a
// config value.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// DefaultStaleTimeoutMs matches queue.DefaultStaleTimeout.
const DefaultStaleTimeoutMs = 30_000

// BindFlags registers femtoqueue's flags on flagSet and binds each one to
// its viper key, so that viper.Unmarshal(&Config{}) later picks up either
// the flag value or a config-file value bound to the same key.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.StringP("root", "r", "", "Base directory the queue coordinates through.")
	if err := viper.BindPFlag("root", flagSet.Lookup("root")); err != nil {
		return err
	}

	flagSet.StringP("node-id", "n", "", "This node's exclusive directory name for claimed tasks.")
	if err := viper.BindPFlag("node-id", flagSet.Lookup("node-id")); err != nil {
		return err
	}

	flagSet.Int("stale-timeout-ms", DefaultStaleTimeoutMs, "Grace period before a peer may reclaim a claimed task.")
	if err := viper.BindPFlag("stale-timeout-ms", flagSet.Lookup("stale-timeout-ms")); err != nil {
		return err
	}

	flagSet.String("log-format", "text", "Log format: text or json.")
	if err := viper.BindPFlag("log.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.String("log-severity", INFO, "Minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, or OFF.")
	if err := viper.BindPFlag("log.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.String("log-file", "", "Path to log to. Empty means stderr.")
	if err := viper.BindPFlag("log.file", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.Int("log-max-file-size-mb", 10, "Log file size, in MB, that triggers rotation.")
	if err := viper.BindPFlag("log.max-file-size-mb", flagSet.Lookup("log-max-file-size-mb")); err != nil {
		return err
	}

	flagSet.Int("log-backup-file-count", 2, "Number of rotated log files to retain.")
	if err := viper.BindPFlag("log.backup-file-count", flagSet.Lookup("log-backup-file-count")); err != nil {
		return err
	}

	flagSet.Bool("log-compress", false, "Compress rotated log files.")
	if err := viper.BindPFlag("log.compress", flagSet.Lookup("log-compress")); err != nil {
		return err
	}

	flagSet.String("metrics-addr", "", "Listen address for the Prometheus scrape endpoint. Empty disables it.")
	if err := viper.BindPFlag("metrics.addr", flagSet.Lookup("metrics-addr")); err != nil {
		return err
	}

	return nil
}
