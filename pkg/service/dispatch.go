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
	"time"

	"github.com/oysterpack/svcbus/pkg/message"
	"github.com/oysterpack/svcbus/pkg/metrics"
)

// dispatch routes the envelope based on its leg :
//   - REQUESTED : the target method is invoked, and the normalized result is sent to the response service
//   - RESPONDED : the response method is invoked, and its result is discarded
//
// Envelopes whose current destination is not this service are dropped.
func (a *Service) dispatch(envelope *message.Envelope) {
	switch {
	case envelope.Leg() == message.REQUESTED && envelope.TargetService() == a.name:
		a.dispatchRequest(envelope)
	case envelope.Leg() == message.RESPONDED && envelope.ResponseService() == a.name:
		a.dispatchResponse(envelope)
	default:
		a.logEnvelope(LOG_EVENT_MESSAGE_MISROUTED.Log(a.logger.Warn()), envelope).Msg("envelope is not addressed to this service")
		a.metrics.Dropped(a.name, metrics.DROP_MISROUTED)
	}
}

func (a *Service) dispatchRequest(envelope *message.Envelope) {
	result, err := a.invoke(envelope.TargetMethod(), envelope, envelope.Args())
	if err != nil {
		a.dropped(envelope, err)
		return
	}
	if envelope.ExpectsResponse() {
		a.SendResponse(envelope.Respond(result))
	}
}

func (a *Service) dispatchResponse(envelope *message.Envelope) {
	if _, err := a.invoke(envelope.ResponseMethod(), envelope, envelope.ResponseArgs()); err != nil {
		a.dropped(envelope, err)
	}
}

// invoke looks up the method and invokes it. Panics are recovered and returned as a PanicError wrapped in an
// InvocationError.
//
// errors:
//   - *MethodNotFoundError
//   - *InvocationError
func (a *Service) invoke(methodName string, envelope *message.Envelope, args message.Args) (result interface{}, err error) {
	method, ok := a.methods[methodName]
	if !ok {
		return nil, &MethodNotFoundError{Service: a.name, Method: methodName, Leg: envelope.Leg()}
	}

	a.logDebugEnvelope(LOG_EVENT_MESSAGE_DISPATCHED, envelope)
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = &InvocationError{
				Service: a.name,
				Method:  methodName,
				Leg:     envelope.Leg(),
				Err:     &PanicError{Panic: p, Message: methodName},
			}
		}
		a.metrics.Dispatched(a.name, envelope.Leg().String(), time.Since(start))
	}()

	result, err = method(&Call{Service: a, Envelope: envelope, Args: args})
	if err != nil {
		return nil, &InvocationError{Service: a.name, Method: methodName, Leg: envelope.Leg(), Err: err}
	}
	return result, nil
}

func (a *Service) dropped(envelope *message.Envelope, err error) {
	methodNotFound := &MethodNotFoundError{}
	if errors.As(err, &methodNotFound) {
		a.logEnvelope(LOG_EVENT_METHOD_NOT_FOUND.Log(a.logger.Warn()), envelope).Err(err).Msgf("method %s is not exist", methodNotFound.Method)
		a.metrics.Dropped(a.name, metrics.DROP_METHOD_NOT_FOUND)
		return
	}
	a.logEnvelope(LOG_EVENT_MESSAGE_PROCESSING_ERR.Log(a.logger.Error()), envelope).Err(err).Msg("")
	a.metrics.Dropped(a.name, metrics.DROP_INVOCATION_ERROR)
}
