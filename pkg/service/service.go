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
	"sync/atomic"
	"time"

	"github.com/oysterpack/svcbus/pkg/logging"
	"github.com/oysterpack/svcbus/pkg/message"
	"github.com/oysterpack/svcbus/pkg/metrics"
	"github.com/oysterpack/svcbus/pkg/queue"
	"github.com/oysterpack/svcbus/pkg/registry"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

// Service is a named set of methods backed by a bounded job queue and a pool of workers.
//
// Life cycle : New() -> Start() -> Stop() -> Start() -> ... -> Close()
//
// Start() and Stop() are idempotent. Stop() must not be called from one of the service's own methods, because Stop()
// waits for all workers to exit.
type Service struct {
	name           string
	workers        int
	dequeueTimeout time.Duration
	methods        Methods

	registry *registry.Registry
	metrics  *metrics.ServiceMetrics
	logger   zerolog.Logger

	queue *queue.Queue

	// serializes Start and Stop
	mutex   sync.Mutex
	tomb    *tomb.Tomb
	running atomic.Bool
}

// New creates a new idle service, i.e., it is not registered and its workers are not running.
//
// errors:
//   - ErrNameBlank
//   - ErrNoMethods
//   - ErrMethodNil
//   - ErrWorkersInvalid
//   - ErrQueueSizeInvalid
func New(settings Settings) (*Service, error) {
	settings = settings.applyDefaults()
	if err := settings.validate(); err != nil {
		return nil, err
	}

	methods := make(Methods, len(settings.Methods))
	for name, method := range settings.Methods {
		methods[name] = method
	}

	svcLogger := settings.Logger.With().Str(logging.SERVICE, settings.Name)
	if settings.Version != nil {
		svcLogger = svcLogger.Str(logging.VERSION, settings.Version.String())
	}

	return &Service{
		name:           settings.Name,
		workers:        settings.Workers,
		dequeueTimeout: settings.DequeueTimeout,
		methods:        methods,
		registry:       settings.Registry,
		metrics:        settings.Metrics,
		logger:         svcLogger.Logger(),
		queue:          queue.New(settings.QueueSize),
	}, nil
}

// Name is the name the service is registered under
func (a *Service) Name() string {
	return a.name
}

// Logger returns the service logger
func (a *Service) Logger() zerolog.Logger {
	return a.logger
}

// Registry returns the registry the service registers with and uses to resolve envelope destinations
func (a *Service) Registry() *registry.Registry {
	return a.registry
}

// Workers returns the number of workers that run when the service is running
func (a *Service) Workers() int {
	return a.workers
}

// QueueLength returns the number of envelopes waiting to be dispatched
func (a *Service) QueueLength() int {
	return a.queue.Len()
}

// QueueCapacity returns the job queue capacity
func (a *Service) QueueCapacity() int {
	return a.queue.Cap()
}

// Running returns true if the service is registered and its workers are running
func (a *Service) Running() bool {
	return a.running.Load()
}

// Start registers the service and starts its workers.
// If the service is already running, then this is a no-op.
func (a *Service) Start() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.running.Load() {
		return
	}

	a.tomb = &tomb.Tomb{}
	a.registry.Register(a.name, a.queue)
	for i := 0; i < a.workers; i++ {
		t := a.tomb
		a.tomb.Go(func() error {
			a.work(t)
			return nil
		})
	}
	a.running.Store(true)
	a.metrics.SetWorkers(a.name, a.workers)
	a.metrics.SetQueueLength(a.name, a.queue.Len())

	LOG_EVENT_STARTED.Log(a.logger.Info()).
		Int(logging.WORKERS, a.workers).
		Int(logging.QUEUE_SIZE, a.queue.Cap()).
		Dur(logging.DEQUEUE_TIMEOUT, a.dequeueTimeout).
		Msg("")
}

// Stop unregisters the service, signals the workers to stop, and waits for them to exit.
// Envelopes that are still queued are kept, and will be dispatched if the service is restarted.
// If the service is not running, then this is a no-op.
func (a *Service) Stop() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if !a.running.Load() {
		return
	}

	LOG_EVENT_STOPPING.Log(a.logger.Debug()).Msg("")
	a.registry.Unregister(a.name, a.queue)
	a.tomb.Kill(nil)
	a.tomb.Wait()
	a.running.Store(false)
	a.metrics.SetWorkers(a.name, 0)
	LOG_EVENT_STOPPED.Log(a.logger.Info()).Int(logging.COUNT, a.queue.Len()).Msg("")
}

// Close stops the service and discards any envelopes that are still queued.
// It always returns nil and implements io.Closer.
func (a *Service) Close() error {
	a.Stop()
	if count := a.queue.Drain(); count > 0 {
		a.metrics.DroppedCount(a.name, metrics.DROP_DISCARDED, count)
		LOG_EVENT_MESSAGE_DROPPED.Log(a.logger.Warn()).Int(logging.COUNT, count).Msg("queued envelopes were discarded")
	}
	a.metrics.SetQueueLength(a.name, 0)
	LOG_EVENT_CLOSED.Log(a.logger.Debug()).Msg("")
	return nil
}

// work runs until the tomb is dying
func (a *Service) work(t *tomb.Tomb) {
	for {
		envelope, ok := a.queue.Poll(t.Dying(), a.dequeueTimeout)
		if !ok {
			select {
			case <-t.Dying():
				return
			default:
				continue
			}
		}
		a.metrics.SetQueueLength(a.name, a.queue.Len())
		a.dispatch(envelope)
	}
}

// SendRequest delivers the envelope to its target service.
// If the target service is not registered, or its queue is full, then a warning is logged and the envelope is dropped.
func (a *Service) SendRequest(envelope *message.Envelope) {
	a.send(envelope)
}

// SendResponse delivers the envelope to its response service. The envelope must have been responded to,
// see message.Envelope.Respond().
// If the envelope has no response service, then this is a no-op.
func (a *Service) SendResponse(envelope *message.Envelope) {
	if !envelope.ExpectsResponse() {
		return
	}
	if envelope.Leg() != message.RESPONDED {
		a.logEnvelope(LOG_EVENT_MESSAGE_MISROUTED.Log(a.logger.Warn()), envelope).Msg("envelope has not been responded to")
		a.metrics.Dropped(a.name, metrics.DROP_MISROUTED)
		return
	}
	a.send(envelope)
}

// Request sends a fire and forget request
func (a *Service) Request(targetService, targetMethod string, args message.Args) {
	a.SendRequest(message.NewRequest(targetService, targetMethod, args))
}

// RequestWithResponse sends a request. The target method's result is delivered to this service's responseMethod.
func (a *Service) RequestWithResponse(targetService, targetMethod string, args message.Args, responseMethod string) {
	a.SendRequest(message.NewRequestWithResponse(targetService, targetMethod, args, a.name, responseMethod))
}

func (a *Service) send(envelope *message.Envelope) {
	destination := envelope.Destination()
	q, ok := a.registry.Lookup(destination)
	if !ok {
		a.logEnvelope(LOG_EVENT_SERVICE_NOT_FOUND.Log(a.logger.Warn()), envelope).Msgf("%s is not exist", destination)
		a.metrics.Dropped(a.name, metrics.DROP_SERVICE_NOT_FOUND)
		return
	}
	// the envelope belongs to the destination once it is offered
	leg := envelope.Leg()
	a.logDebugEnvelope(LOG_EVENT_MESSAGE_SENT, envelope)
	if err := q.Offer(envelope); err != nil {
		a.logEnvelope(LOG_EVENT_QUEUE_FULL.Log(a.logger.Warn()), envelope).Err(err).Msgf("%s job queue is full", destination)
		a.metrics.Dropped(destination, metrics.DROP_QUEUE_FULL)
		return
	}
	a.metrics.Enqueued(destination, leg.String())
	a.metrics.SetQueueLength(destination, q.Len())
}

// logDebugEnvelope logs the full envelope when debug logging is enabled
func (a *Service) logDebugEnvelope(event logging.Event, envelope *message.Envelope) {
	if e := a.logger.Debug(); e.Enabled() {
		event.Log(e).Str(logging.ENVELOPE, envelope.String()).Msg("")
	}
}

func (a *Service) logEnvelope(event *zerolog.Event, envelope *message.Envelope) *zerolog.Event {
	event = event.Str(logging.MSG_ID, envelope.Id()).
		Str(logging.LEG, envelope.Leg().String()).
		Str(logging.TARGET, envelope.TargetService()).
		Str(logging.TARGET_METHOD, envelope.TargetMethod())
	if envelope.ExpectsResponse() {
		event = event.Str(logging.REPLY_TO, envelope.ResponseService()).
			Str(logging.REPLY_METHOD, envelope.ResponseMethod())
	}
	return event
}
