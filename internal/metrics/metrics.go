// Copyright 2024 Google LLC
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

// Package metrics records queue engine activity as OpenTelemetry
// instruments, exported to Prometheus scrapers. Counters live in process
// memory: a /metrics endpoint reports only what Recorders in its own process
// have recorded. The "serve-metrics" CLI subcommand creates no Recorder, so
// queue activity from other CLI invocations does not appear on its endpoint.
package metrics

import (
	"context"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var meter = otel.Meter("femtoqueue")

// PopSource labels where a popped task came from: this node's own
// in-progress directory (an orphan from a prior crash) or the shared
// pending directory.
type PopSource string

const (
	PopSourceOwnOrphan PopSource = "own_orphan"
	PopSourcePending    PopSource = "pending"
)

// Outcome labels how a task was completed.
type Outcome string

const (
	OutcomeDone   Outcome = "done"
	OutcomeFailed Outcome = "failed"
)

// Recorder is the handle queue.Engine and the stale reclaimer hold to
// report activity. A nil *Recorder is valid and records nothing, so
// instrumentation is optional.
type Recorder struct {
	pushed        atomic.Int64
	poppedOrphan  atomic.Int64
	poppedPending atomic.Int64
	completedDone atomic.Int64
	completedFail atomic.Int64
	reclaimed     atomic.Int64
	claimRaces    atomic.Int64

	scanHist metric.Float64Histogram
}

// NewRecorder registers femtoqueue's instruments against the default
// OpenTelemetry meter. Call NewPrometheusExporter once per process to wire
// these instruments to a scrape endpoint.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{}

	_, err := meter.Int64ObservableCounter("femtoqueue_pushed_total",
		metric.WithDescription("tasks written to the pending directory"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.pushed.Load())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	ownOrphanAttrs := metric.WithAttributeSet(attribute.NewSet(attribute.String("source", string(PopSourceOwnOrphan))))
	pendingAttrs := metric.WithAttributeSet(attribute.NewSet(attribute.String("source", string(PopSourcePending))))
	_, err = meter.Int64ObservableCounter("femtoqueue_popped_total",
		metric.WithDescription("tasks claimed via pop, by source"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.poppedOrphan.Load(), ownOrphanAttrs)
			o.Observe(r.poppedPending.Load(), pendingAttrs)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	doneAttrs := metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", string(OutcomeDone))))
	failedAttrs := metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", string(OutcomeFailed))))
	_, err = meter.Int64ObservableCounter("femtoqueue_completed_total",
		metric.WithDescription("tasks moved to a terminal state, by outcome"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.completedDone.Load(), doneAttrs)
			o.Observe(r.completedFail.Load(), failedAttrs)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableCounter("femtoqueue_reclaimed_total",
		metric.WithDescription("tasks moved from a peer's in-progress directory back to pending"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.reclaimed.Load())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableCounter("femtoqueue_claim_race_total",
		metric.WithDescription("renames that lost a claim race and were absorbed silently"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.claimRaces.Load())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	r.scanHist, err = meter.Float64Histogram("femtoqueue_stale_scan_duration_seconds",
		metric.WithDescription("wall-clock duration of a stale reclaimer scan"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Recorder) RecordPush() {
	if r == nil {
		return
	}
	r.pushed.Add(1)
}

func (r *Recorder) RecordPop(source PopSource) {
	if r == nil {
		return
	}
	switch source {
	case PopSourceOwnOrphan:
		r.poppedOrphan.Add(1)
	case PopSourcePending:
		r.poppedPending.Add(1)
	}
}

func (r *Recorder) RecordCompletion(outcome Outcome) {
	if r == nil {
		return
	}
	switch outcome {
	case OutcomeDone:
		r.completedDone.Add(1)
	case OutcomeFailed:
		r.completedFail.Add(1)
	}
}

func (r *Recorder) RecordReclaim(count int64) {
	if r == nil || count == 0 {
		return
	}
	r.reclaimed.Add(count)
}

func (r *Recorder) RecordClaimRace() {
	if r == nil {
		return
	}
	r.claimRaces.Add(1)
}

func (r *Recorder) RecordScanDuration(ctx context.Context, seconds float64) {
	if r == nil || r.scanHist == nil {
		return
	}
	r.scanHist.Record(ctx, seconds)
}

// NewPrometheusExporter installs a Prometheus exporter as the global
// OpenTelemetry meter provider and returns an http.Handler serving the
// resulting /metrics page, registered against its own promclient.Registry
// rather than the default global one.
func NewPrometheusExporter() (http.Handler, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
