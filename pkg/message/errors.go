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
)

// ArityError indicates a method was invoked with the wrong number of arguments
type ArityError struct {
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d argument(s) but got %d", e.Expected, e.Actual)
}

// ArgTypeError indicates an argument does not have the expected type
type ArgTypeError struct {
	Index int
	// Expected is the expected type name
	Expected string
	Actual   interface{}
}

func (e *ArgTypeError) Error() string {
	return fmt.Sprintf("argument[%d] : expected %s but got %T", e.Index, e.Expected, e.Actual)
}
