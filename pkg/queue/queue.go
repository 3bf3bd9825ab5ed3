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

// Package queue provides the bounded job queue that feeds a service's workers.
package queue

import (
	"errors"
	"time"

	"github.com/oysterpack/svcbus/pkg/message"
)

var (
	ErrQueueFull    = errors.New("Queue is full")
	ErrEnvelopeNil  = errors.New("Envelope is nil")
	ErrCapacityZero = errors.New("Queue capacity must be > 0")
)

// New creates a new Queue with the specified capacity.
// Panics with ErrCapacityZero if capacity < 1.
func New(capacity int) *Queue {
	if capacity < 1 {
		panic(ErrCapacityZero)
	}
	return &Queue{c: make(chan *message.Envelope, capacity)}
}

// Queue is a bounded FIFO queue of envelopes that is safe for concurrent producers and consumers.
//
// Producers never block : when the queue is full, the newest envelope is rejected.
// Consumers block for a bounded time.
type Queue struct {
	c chan *message.Envelope
}

// Offer puts the envelope on the queue without blocking.
//
// errors:
//   - ErrQueueFull
//   - ErrEnvelopeNil
func (a *Queue) Offer(envelope *message.Envelope) error {
	if envelope == nil {
		return ErrEnvelopeNil
	}
	select {
	case a.c <- envelope:
		return nil
	default:
		return ErrQueueFull
	}
}

// Poll waits for the next envelope.
//   - if timeout > 0, then Poll waits at most for the timeout duration
//   - if timeout <= 0, then Poll waits until an envelope is available
//
// In either case, Poll returns as soon as dying is closed. false is returned if no envelope was dequeued.
func (a *Queue) Poll(dying <-chan struct{}, timeout time.Duration) (*message.Envelope, bool) {
	if timeout <= 0 {
		select {
		case envelope := <-a.c:
			return envelope, true
		case <-dying:
			return nil, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case envelope := <-a.c:
		return envelope, true
	case <-dying:
		return nil, false
	case <-timer.C:
		return nil, false
	}
}

// Len returns the number of queued envelopes
func (a *Queue) Len() int {
	return len(a.c)
}

// Cap returns the queue capacity
func (a *Queue) Cap() int {
	return cap(a.c)
}

// Drain discards all queued envelopes and returns the number that were discarded
func (a *Queue) Drain() (count int) {
	for {
		select {
		case <-a.c:
			count++
		default:
			return
		}
	}
}
