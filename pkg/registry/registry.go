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

// Package registry maps service names to their job queues.
//
// Services register their queue when started and unregister it when stopped.
// Senders resolve the destination queue at send time.
package registry

import (
	"sort"
	"sync"

	"github.com/oysterpack/svcbus/pkg/logging"
	"github.com/oysterpack/svcbus/pkg/queue"
)

type registryPackage struct{}

var logger = logging.NewPackageLogger(registryPackage{})

const (
	LOG_EVENT_REGISTERED   logging.Event = "REGISTERED"
	LOG_EVENT_REPLACED     logging.Event = "REPLACED"
	LOG_EVENT_UNREGISTERED logging.Event = "UNREGISTERED"
)

// Default is the process wide registry, used by services that are not configured with their own registry
var Default = New()

// New returns a new empty Registry
func New() *Registry {
	return &Registry{queues: make(map[string]*queue.Queue)}
}

// Registry is a concurrency safe directory of service name -> job queue
type Registry struct {
	lock   sync.RWMutex
	queues map[string]*queue.Queue
}

// Register maps the name to the queue.
// If the name was already registered, then the mapping is replaced, a warning is logged, and true is returned.
func (a *Registry) Register(name string, q *queue.Queue) (replaced bool) {
	a.lock.Lock()
	_, replaced = a.queues[name]
	a.queues[name] = q
	a.lock.Unlock()

	if replaced {
		LOG_EVENT_REPLACED.Log(logger.Warn()).Str(logging.SERVICE, name).Msg("service was already registered")
	} else {
		LOG_EVENT_REGISTERED.Log(logger.Debug()).Str(logging.SERVICE, name).Msg("")
	}
	return
}

// Unregister removes the name only if it still maps to q.
// Thus, a service that was replaced by another service with the same name cannot unregister the newer one.
func (a *Registry) Unregister(name string, q *queue.Queue) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	if current, ok := a.queues[name]; ok && current == q {
		delete(a.queues, name)
		LOG_EVENT_UNREGISTERED.Log(logger.Debug()).Str(logging.SERVICE, name).Msg("")
		return true
	}
	return false
}

// Lookup returns the queue registered for the name
func (a *Registry) Lookup(name string) (*queue.Queue, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	q, ok := a.queues[name]
	return q, ok
}

// Names returns the registered service names, sorted
func (a *Registry) Names() []string {
	a.lock.RLock()
	names := make([]string, 0, len(a.queues))
	for name := range a.queues {
		names = append(names, name)
	}
	a.lock.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered services
func (a *Registry) Len() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return len(a.queues)
}
