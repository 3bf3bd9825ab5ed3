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
	"errors"
	"fmt"

	"github.com/oysterpack/svcbus/pkg/message"
)

var (
	ErrNameBlank        = errors.New("Service name must not be blank")
	ErrNoMethods        = errors.New("Service must have at least 1 method")
	ErrMethodNil        = errors.New("Service method must not be nil")
	ErrWorkersInvalid   = errors.New("Service workers must be > 0")
	ErrQueueSizeInvalid = errors.New("Service queue size must be > 0")
)

// PanicError is used to wrap any trapped panics along with a supplemental info about the context of the panic
type PanicError struct {
	Panic interface{}
	// additional info
	Message string
}

func (e *PanicError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("panic: %v : %v", e.Panic, e.Message)
	}
	return fmt.Sprintf("panic: %v", e.Panic)
}

// MethodNotFoundError indicates the envelope named a method that the service does not have
type MethodNotFoundError struct {
	Service string
	Method  string
	Leg     message.Leg
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("%s.%s is not exist : %v", e.Service, e.Method, e.Leg)
}

// InvocationError wraps the error returned by a service method, or the PanicError if the method panicked
type InvocationError struct {
	Service string
	Method  string
	Leg     message.Leg
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s.%s failed : %v : %v", e.Service, e.Method, e.Leg, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
