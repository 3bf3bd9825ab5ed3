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

import "reflect"

// Args are the positional arguments for a method call.
//
// A nil Args means no arguments were supplied, which is different from an empty Args.
// Args is the only type that is spread into multiple arguments. Any other value, including slices,
// is treated as a single argument.
type Args []interface{}

// Normalize converts a value into Args :
//
//   - nil -> nil, i.e., absent
//   - Args -> returned as is
//   - any other value -> Args{v}
func Normalize(v interface{}) Args {
	switch v := v.(type) {
	case nil:
		return nil
	case Args:
		return v
	default:
		return Args{v}
	}
}

// Len returns the number of arguments
func (a Args) Len() int {
	return len(a)
}

// At returns the argument at index i, or nil if i is out of range
func (a Args) At(i int) interface{} {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Expect checks that there are exactly n arguments.
//
// errors:
//   - *ArityError
func (a Args) Expect(n int) error {
	if len(a) != n {
		return &ArityError{Expected: n, Actual: len(a)}
	}
	return nil
}

// Arg returns the argument at index i as a T.
//
// errors:
//   - *ArityError if i is out of range
//   - *ArgTypeError if the argument is not a T
func Arg[T any](args Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, &ArityError{Expected: i + 1, Actual: len(args)}
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, &ArgTypeError{Index: i, Expected: reflect.TypeOf((*T)(nil)).Elem().String(), Actual: args[i]}
	}
	return v, nil
}
