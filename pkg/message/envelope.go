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

package message

import (
	"fmt"
	"time"

	"github.com/json-iterator/go"
	"github.com/nats-io/nuid"
)

// Leg is the dispatch phase an Envelope is in.
type Leg int

const (
	// REQUESTED means the envelope is on its way to the target service
	REQUESTED Leg = iota
	// RESPONDED means the target method was invoked and the envelope is on its way back to the response service
	RESPONDED
)

func (a Leg) String() string {
	switch a {
	case REQUESTED:
		return "request"
	case RESPONDED:
		return "response"
	default:
		return "unknown"
	}
}

// Envelope carries a method call to a target service, and optionally names the service method that receives the result.
//
// An Envelope is owned by exactly one goroutine at a time : the sender until it is enqueued, then the worker that dequeued it.
// Thus, it requires no synchronization.
type Envelope struct {
	id      string
	created time.Time

	targetService string
	targetMethod  string
	args          Args

	responseService string
	responseMethod  string
	responseArgs    Args

	leg Leg
}

// NewRequest creates a fire and forget request envelope, i.e., no response will be sent.
func NewRequest(targetService, targetMethod string, args Args) *Envelope {
	return NewRequestWithResponse(targetService, targetMethod, args, "", "")
}

// NewRequestWithResponse creates a request envelope. The value returned by the target method is delivered to
// responseService's responseMethod. If responseService is blank, then no response is sent.
func NewRequestWithResponse(targetService, targetMethod string, args Args, responseService, responseMethod string) *Envelope {
	return &Envelope{
		id:              nuid.Next(),
		created:         time.Now(),
		targetService:   targetService,
		targetMethod:    targetMethod,
		args:            args,
		responseService: responseService,
		responseMethod:  responseMethod,
		leg:             REQUESTED,
	}
}

func (a *Envelope) Id() string {
	return a.id
}

func (a *Envelope) Created() time.Time {
	return a.created
}

func (a *Envelope) TargetService() string {
	return a.targetService
}

func (a *Envelope) TargetMethod() string {
	return a.targetMethod
}

// Args returns the request arguments. nil means no arguments were supplied.
func (a *Envelope) Args() Args {
	return a.args
}

func (a *Envelope) ResponseService() string {
	return a.responseService
}

func (a *Envelope) ResponseMethod() string {
	return a.responseMethod
}

// ResponseArgs returns the normalized value returned by the target method. nil means the method returned nothing.
func (a *Envelope) ResponseArgs() Args {
	return a.responseArgs
}

// ExpectsResponse returns true if a response service was specified
func (a *Envelope) ExpectsResponse() bool {
	return a.responseService != ""
}

func (a *Envelope) Leg() Leg {
	return a.leg
}

// Respond records the result of the request call and moves the envelope to the RESPONDED leg.
// The result is normalized, see Normalize().
func (a *Envelope) Respond(result interface{}) *Envelope {
	a.responseArgs = Normalize(result)
	a.leg = RESPONDED
	return a
}

// Destination returns the service name the envelope should be delivered to for its current leg
func (a *Envelope) Destination() string {
	if a.leg == RESPONDED {
		return a.responseService
	}
	return a.targetService
}

func (a *Envelope) String() string {
	type envelope struct {
		Id      string
		Created time.Time
		Leg     string

		TargetService string
		TargetMethod  string
		Args          Args `json:",omitempty"`

		ResponseService string `json:",omitempty"`
		ResponseMethod  string `json:",omitempty"`
		ResponseArgs    Args   `json:",omitempty"`
	}

	json, err := jsoniter.Marshal(&envelope{
		a.id,
		a.created,
		a.leg.String(),
		a.targetService,
		a.targetMethod,
		a.args,
		a.responseService,
		a.responseMethod,
		a.responseArgs,
	})
	if err != nil {
		return fmt.Sprintf(`{"Id":%q,"error":%q}`, a.id, err.Error())
	}
	return string(json)
}
