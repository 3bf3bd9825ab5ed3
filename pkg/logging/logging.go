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

package logging

import (
	"io"
	"os"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// logger fields
const (
	PACKAGE = "pkg"
	FUNC    = "func"
	SERVICE = "svc"
	EVENT   = "event"
	VERSION = "version"

	MSG_ID        = "msg_id"
	LEG           = "leg"
	TARGET        = "target"
	TARGET_METHOD = "method"
	REPLY_TO      = "reply_to"
	REPLY_METHOD  = "reply_method"

	WORKERS         = "workers"
	QUEUE_SIZE      = "queue_size"
	DEQUEUE_TIMEOUT = "dequeue_timeout"
	COUNT           = "count"

	ENVELOPE = "envelope"
)

// Event is used to tag log entries with a well known event name, e.g.,
//
//	LOG_EVENT_STARTED.Log(logger.Info()).Msg("")
type Event string

// Log stamps the event name on the log entry
func (a Event) Log(event *zerolog.Event) *zerolog.Event {
	return event.Str(EVENT, string(a))
}

func (a Event) String() string {
	return string(a)
}

// NewPackageLogger returns a new logger with pkg={pkg}
// where {pkg} is o's package path
// o must be for a named type - the pattern is to use an empty struct
// Package loggers write to the output that was configured by Init, even if they were created before Init was called.
func NewPackageLogger(o interface{}) zerolog.Logger {
	pkg := typePackage(reflect.TypeOf(o))
	if pkg == "" {
		panic("NewPackageLogger only supports objects for named types")
	}
	return zerolog.New(sink).With().Timestamp().Str(PACKAGE, pkg).Logger()
}

// sink is the output shared by all package loggers. Init switches it to the configured writers.
var sink = newSwitchWriter(os.Stderr)

type target struct {
	io.Writer
}

// switchWriter forwards log entries to the current target, which can be switched at any time
type switchWriter struct {
	target atomic.Value
}

func newSwitchWriter(w io.Writer) *switchWriter {
	writer := &switchWriter{}
	writer.set(w)
	return writer
}

func (a *switchWriter) set(w io.Writer) {
	a.target.Store(target{w})
}

func (a *switchWriter) get() io.Writer {
	return a.target.Load().(target).Writer
}

func (a *switchWriter) Write(p []byte) (int, error) {
	return a.get().Write(p)
}

func (a *switchWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if w, ok := a.get().(zerolog.LevelWriter); ok {
		return w.WriteLevel(level, p)
	}
	return a.get().Write(p)
}

func typePackage(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		return typePackage(t.Elem())
	}
	return t.PkgPath()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
