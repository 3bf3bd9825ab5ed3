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

import "github.com/oysterpack/svcbus/pkg/logging"

type pkgobject struct{}

var logger = logging.NewPackageLogger(pkgobject{})

const (
	LOG_EVENT_STARTED  logging.Event = "STARTED"
	LOG_EVENT_STOPPING logging.Event = "STOPPING"
	LOG_EVENT_STOPPED  logging.Event = "STOPPED"
	LOG_EVENT_CLOSED   logging.Event = "CLOSED"

	LOG_EVENT_MESSAGE_SENT           logging.Event = "MSG_SENT"
	LOG_EVENT_MESSAGE_DISPATCHED     logging.Event = "MSG_DISPATCHED"
	LOG_EVENT_MESSAGE_DROPPED        logging.Event = "MSG_DROPPED"
	LOG_EVENT_MESSAGE_PROCESSING_ERR logging.Event = "MSG_ERR"
	LOG_EVENT_MESSAGE_MISROUTED      logging.Event = "MSG_MISROUTED"

	LOG_EVENT_SERVICE_NOT_FOUND logging.Event = "SERVICE_NOT_FOUND"
	LOG_EVENT_QUEUE_FULL        logging.Event = "QUEUE_FULL"
	LOG_EVENT_METHOD_NOT_FOUND  logging.Event = "METHOD_NOT_FOUND"

	LOG_EVENT_GROUP_STARTING   logging.Event = "GROUP_STARTING"
	LOG_EVENT_GROUP_STOPPING   logging.Event = "GROUP_STOPPING"
	LOG_EVENT_GROUP_STOPPED    logging.Event = "GROUP_STOPPED"
	LOG_EVENT_SERVICE_STOPPING logging.Event = "SERVICE_STOPPING"
)
