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

// Package calculator provides 2 demo services :
//   - Calculator adds numbers
//   - User asks the Calculator to add numbers and receives the sum as a response
package calculator

import (
	"github.com/Masterminds/semver"
	"github.com/oysterpack/svcbus/pkg/message"
	"github.com/oysterpack/svcbus/pkg/service"
)

// service names
const (
	CALCULATOR = "Calculator"
	USER       = "User"
)

// method names
const (
	PLUS_OPERATION         = "plusOperation"
	ASK_PLUS_OPERATION     = "askPlusOperation"
	ON_PLUS_OPERATION_DONE = "onPlusOperationDone"
)

// Version is the demo services version
var Version = semver.MustParse("1.0.0")

// NewCalculator creates the Calculator service.
// The settings Name, Methods, and Version are set by NewCalculator.
func NewCalculator(settings service.Settings) (*service.Service, error) {
	settings.Name = CALCULATOR
	settings.Version = Version
	settings.Methods = service.Methods{
		PLUS_OPERATION: service.Func2(plusOperation),
	}
	return service.New(settings)
}

// plusOperation returns the operands along with their sum
func plusOperation(a, b int) (interface{}, error) {
	return message.Args{a, b, a + b}, nil
}

// Sum is the result of a plus operation
type Sum struct {
	A, B, Result int
}

// User asks the Calculator to add numbers. Sums are published on the Sums channel.
type User struct {
	*service.Service
	sums chan Sum
}

// NewUser creates the User service.
// sumsBufferSize is the Sums channel buffer size. If the buffer is full, then sums are only logged.
func NewUser(settings service.Settings, sumsBufferSize int) (*User, error) {
	user := &User{sums: make(chan Sum, sumsBufferSize)}
	settings.Name = USER
	settings.Version = Version
	settings.Methods = service.Methods{
		ASK_PLUS_OPERATION:     service.Func2(user.askPlusOperation),
		ON_PLUS_OPERATION_DONE: user.onPlusOperationDone,
	}
	svc, err := service.New(settings)
	if err != nil {
		return nil, err
	}
	user.Service = svc
	return user, nil
}

// Sums returns the channel that sums are published on
func (a *User) Sums() <-chan Sum {
	return a.sums
}

// AskPlusOperation sends the plus operation request to the Calculator
func (a *User) AskPlusOperation(x, y int) {
	logger := a.Logger()
	logger.Debug().Msgf("%d, %d", x, y)
	a.RequestWithResponse(CALCULATOR, PLUS_OPERATION, message.Args{x, y}, ON_PLUS_OPERATION_DONE)
}

func (a *User) askPlusOperation(x, y int) (interface{}, error) {
	a.AskPlusOperation(x, y)
	return nil, nil
}

func (a *User) onPlusOperationDone(call *service.Call) (interface{}, error) {
	if err := call.Args.Expect(3); err != nil {
		return nil, err
	}
	var operands [3]int
	for i := range operands {
		n, err := message.Arg[int](call.Args, i)
		if err != nil {
			return nil, err
		}
		operands[i] = n
	}
	sum := Sum{A: operands[0], B: operands[1], Result: operands[2]}
	logger := call.Logger()
	logger.Debug().Msgf("%d + %d = %d", sum.A, sum.B, sum.Result)
	select {
	case a.sums <- sum:
	default:
	}
	return nil, nil
}
