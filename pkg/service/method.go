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
	"github.com/oysterpack/svcbus/pkg/message"
)

// Method is a service method that envelopes are dispatched to by name.
//
// For the request leg, the returned value is normalized and sent to the response service, if one was specified.
// For the response leg, the returned value is discarded.
// A returned error is logged and the envelope is dropped.
//
// Methods are invoked concurrently by the service workers. Thus, methods must be concurrency safe.
type Method func(call *Call) (interface{}, error)

// Methods maps method names to methods
type Methods map[string]Method

// Call is the context for a single method invocation
type Call struct {
	*Service
	Envelope *message.Envelope
	// Args are the request args on the request leg, and the response args on the response leg
	Args message.Args
}

// Leg returns which leg the envelope is being dispatched for
func (a *Call) Leg() message.Leg {
	return a.Envelope.Leg()
}

// Func0 adapts a function that takes no arguments
func Func0(f func() (interface{}, error)) Method {
	return func(call *Call) (interface{}, error) {
		if err := call.Args.Expect(0); err != nil {
			return nil, err
		}
		return f()
	}
}

// Func1 adapts a function that takes 1 argument
func Func1[A any](f func(a A) (interface{}, error)) Method {
	return func(call *Call) (interface{}, error) {
		if err := call.Args.Expect(1); err != nil {
			return nil, err
		}
		a, err := message.Arg[A](call.Args, 0)
		if err != nil {
			return nil, err
		}
		return f(a)
	}
}

// Func2 adapts a function that takes 2 arguments
func Func2[A, B any](f func(a A, b B) (interface{}, error)) Method {
	return func(call *Call) (interface{}, error) {
		if err := call.Args.Expect(2); err != nil {
			return nil, err
		}
		a, err := message.Arg[A](call.Args, 0)
		if err != nil {
			return nil, err
		}
		b, err := message.Arg[B](call.Args, 1)
		if err != nil {
			return nil, err
		}
		return f(a, b)
	}
}

// Func3 adapts a function that takes 3 arguments
func Func3[A, B, C any](f func(a A, b B, c C) (interface{}, error)) Method {
	return func(call *Call) (interface{}, error) {
		if err := call.Args.Expect(3); err != nil {
			return nil, err
		}
		a, err := message.Arg[A](call.Args, 0)
		if err != nil {
			return nil, err
		}
		b, err := message.Arg[B](call.Args, 1)
		if err != nil {
			return nil, err
		}
		c, err := message.Arg[C](call.Args, 2)
		if err != nil {
			return nil, err
		}
		return f(a, b, c)
	}
}
