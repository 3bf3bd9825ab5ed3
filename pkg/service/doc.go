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

// Package service provides named services that exchange envelopes by service name and method name.
//
// Each service owns a bounded job queue and a fixed pool of workers. When started, the service registers its queue
// under its name. Senders resolve the destination queue by name at send time, and never block :
//   - if the destination service is not registered, the envelope is dropped
//   - if the destination queue is full, the envelope is dropped
//
// Workers dequeue envelopes and dispatch them by method name. If a request envelope names a response service, then the
// method's result is sent back to the response service's response method. Failures are logged and the envelope is
// dropped. They are never reported back to the sender.
//
// A service's workers invoke its methods concurrently. Thus, methods must be concurrency safe. Within a single queue,
// envelopes are dequeued in FIFO order, but they may complete in any order.
//
// Key Types
//
//	Service
//	Settings
//	Method
//	Call
//	Group
//
// Key Functions
//
//	New(Settings) (*Service, error)
//	NewGroup(...*Service) *Group
//	Func0, Func1, Func2, Func3
package service
