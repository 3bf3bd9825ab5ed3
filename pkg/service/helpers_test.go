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

package service_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oysterpack/svcbus/pkg/message"
	"github.com/oysterpack/svcbus/pkg/metrics"
	"github.com/oysterpack/svcbus/pkg/registry"
	"github.com/oysterpack/svcbus/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// testBus isolates each test with its own service registry and metrics registry
type testBus struct {
	t               *testing.T
	registry        *registry.Registry
	metricsRegistry *prometheus.Registry
	metrics         *metrics.ServiceMetrics
	group           *service.Group
}

func newTestBus(t *testing.T) *testBus {
	metricsRegistry := metrics.NewRegistry(false)
	return &testBus{
		t:               t,
		registry:        registry.New(),
		metricsRegistry: metricsRegistry,
		metrics:         metrics.NewServiceMetrics(metricsRegistry),
		group:           service.NewGroup(),
	}
}

func (a *testBus) newService(settings service.Settings) *service.Service {
	settings.Registry = a.registry
	settings.Metrics = a.metrics
	svc, err := service.New(settings)
	if err != nil {
		a.t.Fatal(err)
	}
	a.group.Add(svc)
	return svc
}

func (a *testBus) shutdown() {
	a.group.Shutdown()
}

func (a *testBus) dropped(svc string, reason metrics.DropReason) float64 {
	value, err := metrics.CounterValue(a.metricsRegistry, "svcbus_envelopes_dropped_total", prometheus.Labels{
		metrics.LABEL_SERVICE: svc,
		metrics.LABEL_REASON:  string(reason),
	})
	if err != nil {
		a.t.Fatal(err)
	}
	return value
}

// eventually polls the condition until it is true, or fails the test after the timeout
func eventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out : %s", msg)
		}
		time.Sleep(time.Millisecond)
	}
}

// recorder collects the args that a method was invoked with
type recorder struct {
	sync.Mutex
	calls []message.Args
}

func (a *recorder) method(result func(args message.Args) interface{}) service.Method {
	return func(call *service.Call) (interface{}, error) {
		a.Lock()
		a.calls = append(a.calls, call.Args)
		a.Unlock()
		if result == nil {
			return nil, nil
		}
		return result(call.Args), nil
	}
}

func (a *recorder) count() int {
	a.Lock()
	defer a.Unlock()
	return len(a.calls)
}

func (a *recorder) last() message.Args {
	a.Lock()
	defer a.Unlock()
	if len(a.calls) == 0 {
		return nil
	}
	return a.calls[len(a.calls)-1]
}

func (a *recorder) all() []message.Args {
	a.Lock()
	defer a.Unlock()
	return append([]message.Args(nil), a.calls...)
}

// syncBuffer is a log sink that is safe to write to from the service workers while the test reads it
type syncBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (a *syncBuffer) Write(p []byte) (int, error) {
	a.Lock()
	defer a.Unlock()
	return a.buf.Write(p)
}

func (a *syncBuffer) String() string {
	a.Lock()
	defer a.Unlock()
	return a.buf.String()
}

func (a *syncBuffer) Contains(s string) bool {
	return strings.Contains(a.String(), s)
}

func newTestLogger(out *syncBuffer) zerolog.Logger {
	return zerolog.New(out).With().Timestamp().Logger()
}
