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

package cfg

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsThenUnmarshalProducesDefaults(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{"--root=/data", "--node-id=node1"}))

	var c Config
	require.NoError(t, viper.Unmarshal(&c))

	assert.Equal(t, "/data", c.Root)
	assert.Equal(t, "node1", c.NodeID)
	assert.Equal(t, DefaultStaleTimeoutMs, c.StaleTimeoutMs)
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, INFO, c.Log.Severity)
}

func TestValidateRejectsMissingRequiredFields(t *testing.T) {
	c := Config{NodeID: "node1", StaleTimeoutMs: 1000, Log: LogConfig{Format: "text", Severity: INFO}}
	assert.Error(t, c.Validate())

	c = Config{Root: "/data", StaleTimeoutMs: 1000, Log: LogConfig{Format: "text", Severity: INFO}}
	assert.Error(t, c.Validate())
}

func TestValidateRejectsNonPositiveStaleTimeout(t *testing.T) {
	c := Config{Root: "/data", NodeID: "node1", StaleTimeoutMs: 0, Log: LogConfig{Format: "text", Severity: INFO}}
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownSeverityOrFormat(t *testing.T) {
	c := Config{Root: "/data", NodeID: "node1", StaleTimeoutMs: 1000, Log: LogConfig{Format: "xml", Severity: INFO}}
	assert.Error(t, c.Validate())

	c = Config{Root: "/data", NodeID: "node1", StaleTimeoutMs: 1000, Log: LogConfig{Format: "text", Severity: "VERBOSE"}}
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	c := Config{Root: "/data", NodeID: "node1", StaleTimeoutMs: 1000, Log: LogConfig{Format: "json", Severity: DEBUG}}
	assert.NoError(t, c.Validate())
}
