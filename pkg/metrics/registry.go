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

	"github.com/oysterpack/svcbus/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metricsPackage struct{}

var logger = logging.NewPackageLogger(metricsPackage{})

var (
	mutex sync.RWMutex

	// Registry is the global registry
	Registry = NewRegistry(true)
)

// NewRegistry creates a new registry.
// If collectProcessMetrics = true, then the prometheus GoCollector and ProcessCollectors are registered.
func NewRegistry(collectProcessMetrics bool) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	if collectProcessMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return registry
}

// GlobalRegistry returns the global Registry
func GlobalRegistry() *prometheus.Registry {
	mutex.RLock()
	defer mutex.RUnlock()
	return Registry
}

// ResetRegistry replaces the global Registry with a new one.
// Collectors that were registered with the previous registry are no longer exported.
func ResetRegistry() {
	mutex.Lock()
	defer mutex.Unlock()
	Registry = NewRegistry(true)
}
