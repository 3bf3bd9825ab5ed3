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
	"sync"
	"time"

	"github.com/oysterpack/svcbus/pkg/logging"
)

// StopWarningInterval is how often Group.Shutdown logs a warning while waiting on a service to stop
var StopWarningInterval = 10 * time.Second

// Group manages the life cycle of a set of services.
// Services are started in the order they were added, and stopped in reverse order.
type Group struct {
	mutex    sync.Mutex
	services []*Service
}

// NewGroup returns a new Group containing the specified services
func NewGroup(services ...*Service) *Group {
	return &Group{services: append([]*Service(nil), services...)}
}

// Add appends the services to the group. If the group is already started, the services need to be started explicitly.
func (a *Group) Add(services ...*Service) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.services = append(a.services, services...)
}

// Services returns the services in start order
func (a *Group) Services() []*Service {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]*Service(nil), a.services...)
}

// Service looks up a service by name. nil is returned if the group does not contain the service.
func (a *Group) Service(name string) *Service {
	for _, service := range a.Services() {
		if service.Name() == name {
			return service
		}
	}
	return nil
}

// Start starts all services in order
func (a *Group) Start() {
	services := a.Services()
	LOG_EVENT_GROUP_STARTING.Log(logger.Info()).Int(logging.COUNT, len(services)).Msg("")
	for _, service := range services {
		service.Start()
	}
}

// Shutdown closes all services in reverse order.
// While waiting on a service to stop, a warning is logged every StopWarningInterval.
func (a *Group) Shutdown() {
	services := a.Services()
	LOG_EVENT_GROUP_STOPPING.Log(logger.Info()).Int(logging.COUNT, len(services)).Msg("")
	defer LOG_EVENT_GROUP_STOPPED.Log(logger.Info()).Msg("")

	ticker := time.NewTicker(StopWarningInterval)
	defer ticker.Stop()
	for i := len(services) - 1; i >= 0; i-- {
		service := services[i]
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			service.Close()
		}()
	WAIT_LOOP:
		for {
			select {
			case <-closed:
				break WAIT_LOOP
			case <-ticker.C:
				LOG_EVENT_SERVICE_STOPPING.Log(service.logger.Warn()).Msg("waiting for service to stop")
			}
		}
	}
}
