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
	"testing"
	"time"

	"github.com/oysterpack/svcbus/pkg/service"
)

func TestGroup(t *testing.T) {
	bus := newTestBus(t)

	noop := service.Methods{"noop": service.Func0(func() (interface{}, error) { return nil, nil })}
	a := bus.newService(service.Settings{Name: "A", Methods: noop})
	b := bus.newService(service.Settings{Name: "B", Methods: noop})

	if bus.group.Service("B") != b || bus.group.Service("C") != nil {
		t.Error("Service() lookup failed")
	}
	if services := bus.group.Services(); len(services) != 2 || services[0] != a || services[1] != b {
		t.Errorf("services should be returned in the order they were added : %v", services)
	}

	bus.group.Start()
	if !a.Running() || !b.Running() {
		t.Error("all services should be running")
	}
	if bus.registry.Len() != 2 {
		t.Errorf("all services should be registered : %v", bus.registry.Names())
	}

	bus.group.Shutdown()
	if a.Running() || b.Running() {
		t.Error("all services should be stopped")
	}
	if bus.registry.Len() != 0 {
		t.Errorf("all services should be unregistered : %v", bus.registry.Names())
	}
}

func TestGroup_ShutdownWaitsForSlowServices(t *testing.T) {
	interval := service.StopWarningInterval
	service.StopWarningInterval = time.Millisecond
	defer func() { service.StopWarningInterval = interval }()

	bus := newTestBus(t)
	log := &syncBuffer{}
	logger := newTestLogger(log)

	started := make(chan struct{})
	slow := bus.newService(service.Settings{
		Name:    "Slow",
		Workers: 1,
		Logger:  &logger,
		Methods: service.Methods{"sleep": func(call *service.Call) (interface{}, error) {
			close(started)
			time.Sleep(50 * time.Millisecond)
			return nil, nil
		}},
	})
	client := bus.newService(service.Settings{Name: "Client", Methods: service.Methods{"noop": service.Func0(func() (interface{}, error) { return nil, nil })}})
	bus.group.Start()

	client.Request("Slow", "sleep", nil)
	<-started

	// When the group is shutdown while a method is still running
	bus.group.Shutdown()

	// Then shutdown waits for the method to complete
	if slow.Running() {
		t.Error("Slow should be stopped")
	}
	if !log.Contains(`"event":"SERVICE_STOPPING"`) {
		t.Errorf("a warning should have been logged while waiting : %s", log.String())
	}
}
