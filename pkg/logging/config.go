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
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DEFAULT_MAX_BACKUPS is the number of rotated log files that are kept when Config.MaxBackups is not specified
const DEFAULT_MAX_BACKUPS = 1

// Config specifies where log entries are written and the minimum level that is logged.
type Config struct {
	// Level is one of [DEBUG,INFO,WARN,ERROR]. Blank means WARN.
	Level string `yaml:"level"`
	// File is optional. When set, log entries are appended to the file in addition to stderr.
	File string `yaml:"file"`
	// MaxSize is the size in megabytes at which the log file is rotated. 0 means lumberjack's default of 100 MB.
	MaxSize int `yaml:"maxSize"`
	// MaxBackups is the number of rotated log files that are kept. 0 means DEFAULT_MAX_BACKUPS.
	MaxBackups int `yaml:"maxBackups"`
	// Pretty switches stderr output to zerolog's human friendly console format.
	Pretty bool `yaml:"pretty"`
}

// ParseLevel maps the level names [DEBUG,INFO,WARN,WARNING,ERROR] to zerolog levels.
// Matching is case insensitive. Blank maps to WARN.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "", "WARN", "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("%w : %q", ErrUnknownLogLevel, level)
	}
}

// New creates a logger for the config.
// The returned io.Closer closes the log file, if one was opened. It is never nil.
func New(config Config) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	out, closer := newWriter(config)
	return zerolog.New(out).With().Timestamp().Logger().Level(level), closer, nil
}

func newWriter(config Config) (io.Writer, io.Closer) {
	var console io.Writer = os.Stderr
	if config.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "02-Jan-06 15:04:05"}
	}
	if config.File == "" {
		return console, nopCloser{}
	}

	maxBackups := config.MaxBackups
	if maxBackups == 0 {
		maxBackups = DEFAULT_MAX_BACKUPS
	}
	file := &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSize,
		MaxBackups: maxBackups,
	}
	return zerolog.MultiLevelWriter(console, file), file
}

// Init configures zerolog's global logger using the config.
//
//  1. the global logger is replaced and the global level is set
//  2. package loggers are switched to the configured output
//  3. go's std log is redirected to zerolog
//
// Closing the returned io.Closer switches package loggers back to stderr and closes the log file.
func Init(config Config) (io.Closer, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return nopCloser{}, err
	}
	out, closer := newWriter(config)
	log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(level)
	zerolog.SetGlobalLevel(level)
	sink.set(out)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
	return closerFunc(func() error {
		sink.set(os.Stderr)
		return closer.Close()
	}), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
