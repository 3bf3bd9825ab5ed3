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

package service

import (
	"strings"
	"time"

	"github.com/Masterminds/semver"
	"github.com/oysterpack/svcbus/pkg/metrics"
	"github.com/oysterpack/svcbus/pkg/registry"
	"github.com/rs/zerolog"
)

// Settings defaults
const (
	DEFAULT_WORKERS         = 16
	DEFAULT_QUEUE_SIZE      = 100
	DEFAULT_DEQUEUE_TIMEOUT = time.Duration(0)
)

// Settings is used by New to create a new service instance
type Settings struct {
	// REQUIRED - the name the service is registered under
	Name string

	// OPTIONAL - the number of worker goroutines - default = DEFAULT_WORKERS
	Workers int
	// OPTIONAL - the job queue capacity - default = DEFAULT_QUEUE_SIZE
	QueueSize int
	// OPTIONAL - how long a worker waits on the job queue per poll.
	// 0 means a worker waits until an envelope arrives or the service is stopped.
	DequeueTimeout time.Duration

	// REQUIRED - the methods that envelopes can be dispatched to
	Methods Methods

	// OPTIONAL - default = registry.Default
	Registry *registry.Registry
	// OPTIONAL - the base logger. The service logger adds the service name.
	Logger *zerolog.Logger
	// OPTIONAL - default = metrics.Default()
	Metrics *metrics.ServiceMetrics

	// OPTIONAL - logged with every service log entry
	Version *semver.Version
}

// applyDefaults fills in the optional settings that were not specified
func (a Settings) applyDefaults() Settings {
	if a.Workers == 0 {
		a.Workers = DEFAULT_WORKERS
	}
	if a.QueueSize == 0 {
		a.QueueSize = DEFAULT_QUEUE_SIZE
	}
	if a.Registry == nil {
		a.Registry = registry.Default
	}
	if a.Logger == nil {
		a.Logger = &logger
	}
	if a.Metrics == nil {
		a.Metrics = metrics.Default()
	}
	return a
}

func (a Settings) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrNameBlank
	}
	if len(a.Methods) == 0 {
		return ErrNoMethods
	}
	for _, method := range a.Methods {
		if method == nil {
			return ErrMethodNil
		}
	}
	if a.Workers < 1 {
		return ErrWorkersInvalid
	}
	if a.QueueSize < 1 {
		return ErrQueueSizeInvalid
	}
	return nil
}
