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

// Package message defines the Envelope that services exchange.
//
// An Envelope passes through at most 2 legs :
//
//	REQUESTED -> target service invokes TargetMethod(Args...)
//	RESPONDED -> response service invokes ResponseMethod(ResponseArgs...)
//
// A fire and forget envelope, i.e., one without a response service, is done after the first leg.
package message
