// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace is the metric namespace for all service bus metrics
	Namespace = "svcbus"

	LABEL_SERVICE = "service"
	LABEL_LEG     = "leg"
	LABEL_REASON  = "reason"
)

// DropReason is why an envelope was dropped
type DropReason string

const (
	DROP_SERVICE_NOT_FOUND = DropReason("service_not_found")
	DROP_QUEUE_FULL        = DropReason("queue_full")
	DROP_METHOD_NOT_FOUND  = DropReason("method_not_found")
	DROP_INVOCATION_ERROR  = DropReason("invocation_error")
	DROP_MISROUTED         = DropReason("misrouted")
	DROP_DISCARDED         = DropReason("discarded")
)

var (
	EnvelopesEnqueuedOpts = &CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "envelopes_enqueued_total",
			Help:      "The number of envelopes that were put on a service job queue",
		},
		Labels: []string{LABEL_SERVICE, LABEL_LEG},
	}

	EnvelopesDroppedOpts = &CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "envelopes_dropped_total",
			Help:      "The number of envelopes that were dropped",
		},
		Labels: []string{LABEL_SERVICE, LABEL_REASON},
	}

	DispatchOpts = &CounterVecOpts{
		CounterOpts: &prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dispatch_total",
			Help:      "The number of envelopes that were dispatched to a service method",
		},
		Labels: []string{LABEL_SERVICE, LABEL_LEG},
	}

	DispatchDurationOpts = &HistogramVecOpts{
		HistogramOpts: &prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Service method invocation duration",
			Buckets:   prometheus.DefBuckets,
		},
		Labels: []string{LABEL_SERVICE, LABEL_LEG},
	}

	WorkersOpts = &GaugeVecOpts{
		GaugeOpts: &prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "The number of running service workers",
		},
		Labels: []string{LABEL_SERVICE},
	}

	QueueLengthOpts = &GaugeVecOpts{
		GaugeOpts: &prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "queue_length",
			Help:      "The number of envelopes waiting on the service job queue",
		},
		Labels: []string{LABEL_SERVICE},
	}
)

// ServiceMetrics are the collectors shared by all services that report to the same registry.
// Each service reports using its name as the service label.
type ServiceMetrics struct {
	EnvelopesEnqueued *prometheus.CounterVec
	EnvelopesDropped  *prometheus.CounterVec
	Dispatch          *prometheus.CounterVec
	DispatchDuration  *prometheus.HistogramVec
	Workers           *prometheus.GaugeVec
	QueueLength       *prometheus.GaugeVec
}

// NewServiceMetrics registers the service metrics with the registerer.
// Collectors that are already registered are reused. Thus, it is safe to call multiple times with the same registerer.
func NewServiceMetrics(registerer prometheus.Registerer) *ServiceMetrics {
	return &ServiceMetrics{
		EnvelopesEnqueued: GetOrMustRegisterCounterVec(registerer, EnvelopesEnqueuedOpts),
		EnvelopesDropped:  GetOrMustRegisterCounterVec(registerer, EnvelopesDroppedOpts),
		Dispatch:          GetOrMustRegisterCounterVec(registerer, DispatchOpts),
		DispatchDuration:  GetOrMustRegisterHistogramVec(registerer, DispatchDurationOpts),
		Workers:           GetOrMustRegisterGaugeVec(registerer, WorkersOpts),
		QueueLength:       GetOrMustRegisterGaugeVec(registerer, QueueLengthOpts),
	}
}

var (
	defaultMetricsMutex    sync.Mutex
	defaultMetrics         *ServiceMetrics
	defaultMetricsRegistry *prometheus.Registry
)

// Default returns the ServiceMetrics registered with the global Registry.
// If the global Registry was reset, then the metrics are registered with the new Registry.
func Default() *ServiceMetrics {
	registry := GlobalRegistry()
	defaultMetricsMutex.Lock()
	defer defaultMetricsMutex.Unlock()
	if defaultMetrics == nil || defaultMetricsRegistry != registry {
		defaultMetrics = NewServiceMetrics(registry)
		defaultMetricsRegistry = registry
	}
	return defaultMetrics
}

// Enqueued records that an envelope was put on the service's queue for the specified leg
func (a *ServiceMetrics) Enqueued(service, leg string) {
	a.EnvelopesEnqueued.WithLabelValues(service, leg).Inc()
}

// Dropped records that an envelope destined for the service was dropped
func (a *ServiceMetrics) Dropped(service string, reason DropReason) {
	a.EnvelopesDropped.WithLabelValues(service, string(reason)).Inc()
}

// DroppedCount records that count envelopes destined for the service were dropped
func (a *ServiceMetrics) DroppedCount(service string, reason DropReason, count int) {
	a.EnvelopesDropped.WithLabelValues(service, string(reason)).Add(float64(count))
}

// Dispatched records a service method invocation
func (a *ServiceMetrics) Dispatched(service, leg string, duration time.Duration) {
	a.Dispatch.WithLabelValues(service, leg).Inc()
	a.DispatchDuration.WithLabelValues(service, leg).Observe(duration.Seconds())
}

// SetWorkers records the number of running workers for the service
func (a *ServiceMetrics) SetWorkers(service string, count int) {
	a.Workers.WithLabelValues(service).Set(float64(count))
}

// SetQueueLength records the service's current queue length
func (a *ServiceMetrics) SetQueueLength(service string, length int) {
	a.QueueLength.WithLabelValues(service).Set(float64(length))
}
