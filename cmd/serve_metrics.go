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
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jantuomi/femtoqueue/internal/logger"
	"github.com/jantuomi/femtoqueue/internal/metrics"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Start the Prometheus metrics HTTP endpoint and block.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := config.Metrics.Addr
		if addr == "" {
			return fmt.Errorf("metrics.addr is empty; pass --metrics-addr or set metrics.addr")
		}

		handler, err := metrics.NewPrometheusExporter()
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)

		logger.Infof("serve-metrics: listening on %s", addr)
		return http.ListenAndServe(addr, mux)
	},
}

func init() {
	rootCmd.AddCommand(serveMetricsCmd)
}
