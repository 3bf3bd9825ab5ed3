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
	"errors"
	"reflect"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oysterpack/svcbus/pkg/message"
	"github.com/oysterpack/svcbus/pkg/metrics"
	"github.com/oysterpack/svcbus/pkg/service"
	"github.com/rs/zerolog"
)

func receiverMethods(receiveNone *recorder) service.Methods {
	return service.Methods{
		"receiveNone": receiveNone.method(nil),
		"receiveNumber": service.Func1(func(a int) (interface{}, error) {
			return a, nil
		}),
		"receivePair": service.Func2(func(a, b int) (interface{}, error) {
			return message.Args{a, b}, nil
		}),
		"receiveTuple": service.Func3(func(a, b, c int) (interface{}, error) {
			return message.Args{a, b, c}, nil
		}),
		"receiveSlice": service.Func1(func(a []int) (interface{}, error) {
			return a, nil
		}),
	}
}

func TestService_RequestResponse(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	receiveNone := &recorder{}
	done := &recorder{}
	receiver := bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(receiveNone)})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}})
	bus.group.Start()

	tests := []struct {
		method   string
		args     message.Args
		expected message.Args
	}{
		{"receiveNone", nil, nil},
		{"receiveNumber", message.Args{1}, message.Args{1}},
		{"receivePair", message.Args{121, 221}, message.Args{121, 221}},
		{"receiveTuple", message.Args{12, 21, 342}, message.Args{12, 21, 342}},
		{"receiveSlice", message.Args{[]int{1, 2, 3}}, message.Args{[]int{1, 2, 3}}},
	}

	for _, test := range tests {
		count := done.count()
		sender.RequestWithResponse(receiver.Name(), test.method, test.args, "done")
		eventually(t, 5*time.Second, func() bool { return done.count() == count+1 }, test.method)
		if result := done.last(); !reflect.DeepEqual(result, test.expected) {
			t.Errorf("%s : %#v != %#v", test.method, result, test.expected)
		}
	}

	if receiveNone.count() != 1 {
		t.Errorf("receiveNone should have been invoked once : %d", receiveNone.count())
	}
}

func TestService_FireAndForget(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	receiveNone := &recorder{}
	done := &recorder{}
	bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(receiveNone)})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}})
	bus.group.Start()

	sender.Request("Receiver", "receiveNone", nil)
	sender.Request("Receiver", "receiveNumber", message.Args{5})

	eventually(t, 5*time.Second, func() bool { return receiveNone.count() == 1 }, "receiveNone")
	time.Sleep(20 * time.Millisecond)
	if done.count() != 0 {
		t.Errorf("no responses should have been sent : %v", done.all())
	}
}

func TestService_StartStopIsIdempotent(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	const WORKERS = 4
	release := make(chan struct{})
	var active int32
	blocker := bus.newService(service.Settings{
		Name:    "Blocker",
		Workers: WORKERS,
		Methods: service.Methods{
			"block": func(call *service.Call) (interface{}, error) {
				atomic.AddInt32(&active, 1)
				defer atomic.AddInt32(&active, -1)
				<-release
				return nil, nil
			},
		},
	})
	client := bus.newService(service.Settings{Name: "Client", Methods: service.Methods{"noop": service.Func0(func() (interface{}, error) { return nil, nil })}})

	// When the service is started twice
	blocker.Start()
	blocker.Start()
	client.Start()

	// Then it is registered once
	if bus.registry.Len() != 2 {
		t.Errorf("registry should contain 2 entries : %v", bus.registry.Names())
	}
	if !blocker.Running() {
		t.Error("Blocker should be running")
	}

	// And exactly WORKERS workers are running
	for i := 0; i < WORKERS*3; i++ {
		client.Request("Blocker", "block", nil)
	}
	eventually(t, 5*time.Second, func() bool { return atomic.LoadInt32(&active) == WORKERS }, "all workers should be busy")
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&active); n != WORKERS {
		t.Errorf("exactly %d workers should be running : %d", WORKERS, n)
	}
	if workers, _ := metrics.GaugeValue(bus.metricsRegistry, "svcbus_workers", map[string]string{metrics.LABEL_SERVICE: "Blocker"}); workers != WORKERS {
		t.Errorf("workers gauge should be %d : %v", WORKERS, workers)
	}

	close(release)
	eventually(t, 5*time.Second, func() bool { return blocker.QueueLength() == 0 && atomic.LoadInt32(&active) == 0 }, "queue should be drained")

	// When the service is stopped twice
	blocker.Stop()
	blocker.Stop()

	// Then it is no longer registered
	if blocker.Running() {
		t.Error("Blocker should not be running")
	}
	if _, ok := bus.registry.Lookup("Blocker"); ok {
		t.Error("Blocker should not be registered")
	}
	if bus.registry.Len() != 1 {
		t.Errorf("only the Client should be registered : %v", bus.registry.Names())
	}
	if workers, _ := metrics.GaugeValue(bus.metricsRegistry, "svcbus_workers", map[string]string{metrics.LABEL_SERVICE: "Blocker"}); workers != 0 {
		t.Errorf("workers gauge should be 0 : %v", workers)
	}
}

func TestService_QueueFullDropsNewest(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	const QUEUE_SIZE = 5
	const REQUESTS = 100
	release := make(chan struct{})
	calls := &recorder{}
	blockingMethod := calls.method(func(args message.Args) interface{} {
		<-release
		return nil
	})
	bus.newService(service.Settings{
		Name:      "Receiver",
		Workers:   1,
		QueueSize: QUEUE_SIZE,
		Methods:   service.Methods{"block": blockingMethod},
	})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"noop": service.Func0(func() (interface{}, error) { return nil, nil })}})
	bus.group.Start()

	// When a burst of requests is sent to a saturated service
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for i := 0; i < REQUESTS; i++ {
			sender.Request("Receiver", "block", message.Args{i})
		}
	}()

	// Then the sender never blocks
	select {
	case <-sent:
	case <-time.After(5 * time.Second):
		t.Fatal("sender blocked")
	}
	close(release)

	// And the excess is dropped
	eventually(t, 5*time.Second, func() bool {
		return float64(calls.count())+bus.dropped("Receiver", metrics.DROP_QUEUE_FULL) == REQUESTS
	}, "all requests should be accounted for")
	if calls.count() > QUEUE_SIZE+1 {
		t.Errorf("at most %d requests should have been processed : %d", QUEUE_SIZE+1, calls.count())
	}

	// And the requests that were queued were processed in FIFO order
	processed := calls.all()
	for i := 1; i < len(processed); i++ {
		if processed[i][0].(int) <= processed[i-1][0].(int) {
			t.Errorf("requests were not dequeued in order : %v", processed)
			break
		}
	}
}

func TestService_UnknownTarget(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	done := &recorder{}
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}})
	sender.Start()

	sender.Request("NoSuchService", "method", nil)
	sender.RequestWithResponse("NoSuchService", "method", message.Args{1}, "done")

	// drops are counted against the sender, because the unknown name is unbounded
	if dropped := bus.dropped("Sender", metrics.DROP_SERVICE_NOT_FOUND); dropped != 2 {
		t.Errorf("2 envelopes should have been dropped : %v", dropped)
	}
	if done.count() != 0 {
		t.Error("no response should have been received")
	}
}

func TestService_UnknownMethod(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	done := &recorder{}
	bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(&recorder{})})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}})
	bus.group.Start()

	// When the target method does not exist
	sender.RequestWithResponse("Receiver", "noSuchMethod", message.Args{1}, "done")
	eventually(t, 5*time.Second, func() bool {
		return bus.dropped("Receiver", metrics.DROP_METHOD_NOT_FOUND) == 1
	}, "request should have been dropped")

	// When the response method does not exist
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{1}, "noSuchMethod")
	eventually(t, 5*time.Second, func() bool {
		return bus.dropped("Sender", metrics.DROP_METHOD_NOT_FOUND) == 1
	}, "response should have been dropped")

	// Then the services keep working
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{2}, "done")
	eventually(t, 5*time.Second, func() bool { return done.count() == 1 }, "response should have been received")
	if done.last()[0] != 2 {
		t.Errorf("wrong response : %v", done.last())
	}
}

func TestService_MethodFailures(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	log := &syncBuffer{}
	logger := newTestLogger(log)
	methods := receiverMethods(&recorder{})
	methods["boom"] = func(call *service.Call) (interface{}, error) {
		panic("boom")
	}
	methods["fail"] = func(call *service.Call) (interface{}, error) {
		return nil, errors.New("failed")
	}
	done := &recorder{}
	bus.newService(service.Settings{Name: "Receiver", Workers: 1, Methods: methods, Logger: &logger})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}})
	bus.group.Start()

	// When methods panic, return errors, or are invoked with the wrong args
	sender.RequestWithResponse("Receiver", "boom", nil, "done")
	sender.RequestWithResponse("Receiver", "fail", nil, "done")
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{"not a number"}, "done")
	sender.RequestWithResponse("Receiver", "receivePair", message.Args{1}, "done")
	eventually(t, 5*time.Second, func() bool {
		return bus.dropped("Receiver", metrics.DROP_INVOCATION_ERROR) == 4
	}, "the failed requests should have been dropped")

	// Then the single worker survives
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{3}, "done")
	eventually(t, 5*time.Second, func() bool { return done.count() == 1 }, "response should have been received")

	// And the failures are logged
	for _, expected := range []string{`"event":"MSG_ERR"`, "panic: boom", "failed", "argument[0]", "expected 2 argument(s) but got 1"} {
		if !log.Contains(expected) {
			t.Errorf("log is missing %q : %s", expected, log.String())
		}
	}
}

func TestService_Restart(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	done := &recorder{}
	receiver := bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(&recorder{})})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}})
	bus.group.Start()

	receiver.Stop()
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{1}, "done")
	if bus.dropped("Sender", metrics.DROP_SERVICE_NOT_FOUND) != 1 {
		t.Error("request should have been dropped while the receiver was stopped")
	}

	receiver.Start()
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{2}, "done")
	eventually(t, 5*time.Second, func() bool { return done.count() == 1 }, "response should have been received after restart")
	if done.last()[0] != 2 {
		t.Errorf("wrong response : %v", done.last())
	}
}

func TestService_SelfRequest(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	done := &recorder{}
	self := bus.newService(service.Settings{Name: "Self", Methods: service.Methods{
		"double": service.Func1(func(a int) (interface{}, error) {
			return a * 2, nil
		}),
		"done": done.method(nil),
	}})
	self.Start()

	// When a service sends a request to itself
	self.RequestWithResponse("Self", "double", message.Args{4}, "done")

	// Then the request and the response legs are both dispatched by the same service
	eventually(t, 5*time.Second, func() bool { return done.count() == 1 }, "response should have been received")
	if !reflect.DeepEqual(done.last(), message.Args{8}) {
		t.Errorf("wrong response : %v", done.last())
	}
	time.Sleep(20 * time.Millisecond)
	if done.count() != 1 {
		t.Errorf("the response should have been dispatched once : %v", done.all())
	}
	if dropped := bus.dropped("Self", metrics.DROP_MISROUTED); dropped != 0 {
		t.Errorf("nothing should have been misrouted : %v", dropped)
	}
}

func TestService_Misrouted(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	received := &recorder{}
	bus.newService(service.Settings{Name: "B", Methods: service.Methods{"m": received.method(nil)}})
	client := bus.newService(service.Settings{Name: "Client", Methods: service.Methods{"done": (&recorder{}).method(nil)}})
	bus.group.Start()

	// Given B's queue is also registered under another name
	q, ok := bus.registry.Lookup("B")
	if !ok {
		t.Fatal("B should be registered")
	}
	bus.registry.Register("Alias", q)

	// When a request addressed to the other name is dequeued by B
	client.Request("Alias", "m", nil)

	// Then B drops it
	eventually(t, 5*time.Second, func() bool {
		return bus.dropped("B", metrics.DROP_MISROUTED) == 1
	}, "request should have been dropped as misrouted")
	if received.count() != 0 {
		t.Errorf("the method should not have been invoked : %v", received.all())
	}

	// When a request that was never responded to is sent as a response
	client.SendResponse(message.NewRequestWithResponse("B", "m", nil, "Client", "done"))

	// Then the sender drops it
	if dropped := bus.dropped("Client", metrics.DROP_MISROUTED); dropped != 1 {
		t.Errorf("response should have been dropped as misrouted : %v", dropped)
	}
}

func TestService_DebugLogsEnvelopes(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	log := &syncBuffer{}
	logger := newTestLogger(log).Level(zerolog.DebugLevel)
	done := &recorder{}
	bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(&recorder{}), Logger: &logger})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"done": done.method(nil)}, Logger: &logger})
	bus.group.Start()

	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{7}, "done")
	eventually(t, 5*time.Second, func() bool { return done.count() == 1 }, "response should have been received")

	for _, expected := range []string{`"event":"MSG_SENT"`, `"event":"MSG_DISPATCHED"`, `\"TargetMethod\":\"receiveNumber\"`, `\"Leg\":\"response\"`} {
		if !log.Contains(expected) {
			t.Errorf("log is missing %s : %s", expected, log.String())
		}
	}

	// And envelopes are not rendered when debug logging is disabled
	quiet := &syncBuffer{}
	infoLogger := newTestLogger(quiet).Level(zerolog.InfoLevel)
	bus.newService(service.Settings{Name: "Quiet", Methods: service.Methods{"done": done.method(nil)}, Logger: &infoLogger}).
		RequestWithResponse("Receiver", "receiveNumber", message.Args{8}, "done")
	if quiet.Contains("MSG_SENT") {
		t.Errorf("envelopes should only be logged at debug level : %s", quiet.String())
	}
}

func TestService_ReplacedRegistration(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	svc1 := bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(&recorder{})})
	svc2 := bus.newService(service.Settings{Name: "Receiver", Methods: receiverMethods(&recorder{})})
	svc1.Start()
	svc2.Start()

	// When the replaced service is stopped
	svc1.Stop()

	// Then the newer registration is kept
	if _, ok := bus.registry.Lookup("Receiver"); !ok {
		t.Error("svc2 should still be registered")
	}
	svc2.Stop()
	if bus.registry.Len() != 0 {
		t.Errorf("registry should be empty : %v", bus.registry.Names())
	}
}

func TestService_CloseDiscardsQueuedEnvelopes(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	release := make(chan struct{})
	receiver := bus.newService(service.Settings{
		Name:    "Receiver",
		Workers: 1,
		Methods: service.Methods{"block": func(call *service.Call) (interface{}, error) {
			<-release
			return nil, nil
		}},
	})
	sender := bus.newService(service.Settings{Name: "Sender", Methods: service.Methods{"noop": service.Func0(func() (interface{}, error) { return nil, nil })}})
	bus.group.Start()

	for i := 0; i < 4; i++ {
		sender.Request("Receiver", "block", nil)
	}
	eventually(t, 5*time.Second, func() bool { return receiver.QueueLength() == 3 }, "1 request should be in progress")

	close(release)
	receiver.Close()
	if receiver.QueueLength() != 0 {
		t.Errorf("queue should be empty : %d", receiver.QueueLength())
	}
	if receiver.Running() {
		t.Error("Receiver should not be running")
	}
}

func TestService_DequeueTimeout(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	done := &recorder{}
	receiver := bus.newService(service.Settings{Name: "Receiver", DequeueTimeout: time.Millisecond, Methods: receiverMethods(&recorder{})})
	sender := bus.newService(service.Settings{Name: "Sender", DequeueTimeout: time.Millisecond, Methods: service.Methods{"done": done.method(nil)}})
	bus.group.Start()

	// workers that timed out keep polling
	time.Sleep(20 * time.Millisecond)
	sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{7}, "done")
	eventually(t, 5*time.Second, func() bool { return done.count() == 1 }, "response should have been received")

	stopped := make(chan struct{})
	go func() {
		receiver.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return")
	}
}

func TestService_Burst(t *testing.T) {
	bus := newTestBus(t)
	defer bus.shutdown()

	const JOBS = 10000
	const WORKERS = 10
	jobs := &recorder{}
	bus.newService(service.Settings{Name: "Receiver", Workers: WORKERS, QueueSize: JOBS, Methods: receiverMethods(&recorder{})})
	sender := bus.newService(service.Settings{Name: "Sender", Workers: WORKERS, QueueSize: JOBS, Methods: service.Methods{"onReceiveJobDone": jobs.method(nil)}})
	bus.group.Start()

	expected := make([]int, 0, JOBS)
	for i, a := 0, 1; i < JOBS; i, a = i+1, a+7 {
		expected = append(expected, a)
		sender.RequestWithResponse("Receiver", "receiveNumber", message.Args{a}, "onReceiveJobDone")
	}

	eventually(t, 30*time.Second, func() bool { return jobs.count() == JOBS }, "all responses should have been received")

	actual := make([]int, 0, JOBS)
	for _, args := range jobs.all() {
		actual = append(actual, args[0].(int))
	}
	sort.Ints(actual)
	sort.Ints(expected)
	if !reflect.DeepEqual(actual, expected) {
		t.Error("the responses do not match the requests")
	}
	if dropped := bus.dropped("Receiver", metrics.DROP_QUEUE_FULL); dropped != 0 {
		t.Errorf("nothing should have been dropped : %v", dropped)
	}
}

func TestNew_Settings(t *testing.T) {
	methods := service.Methods{"noop": service.Func0(func() (interface{}, error) { return nil, nil })}
	tests := []struct {
		settings service.Settings
		err      error
	}{
		{service.Settings{Name: " ", Methods: methods}, service.ErrNameBlank},
		{service.Settings{Name: "a"}, service.ErrNoMethods},
		{service.Settings{Name: "a", Methods: service.Methods{"nil": nil}}, service.ErrMethodNil},
		{service.Settings{Name: "a", Methods: methods, Workers: -1}, service.ErrWorkersInvalid},
		{service.Settings{Name: "a", Methods: methods, QueueSize: -1}, service.ErrQueueSizeInvalid},
	}
	for _, test := range tests {
		if _, err := service.New(test.settings); err != test.err {
			t.Errorf("%v != %v", err, test.err)
		}
	}

	// defaults are applied
	svc, err := service.New(service.Settings{Name: "a", Methods: methods})
	if err != nil {
		t.Fatal(err)
	}
	if svc.Workers() != service.DEFAULT_WORKERS || svc.QueueCapacity() != service.DEFAULT_QUEUE_SIZE {
		t.Errorf("defaults were not applied : %d : %d", svc.Workers(), svc.QueueCapacity())
	}
	if svc.Running() {
		t.Error("a new service should be idle")
	}
}
