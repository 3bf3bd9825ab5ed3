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

// Package config loads the YAML configuration for a process that hosts services.
//
//	log:
//	  level: INFO
//	  file: /var/log/calculator.log
//	metrics:
//	  addr: ":9090"
//	services:
//	  Calculator:
//	    workers: 4
//	    queueSize: 1000
//	    dequeueTimeout: 100ms
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/oysterpack/svcbus/pkg/logging"
	"github.com/oysterpack/svcbus/pkg/service"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration
type Config struct {
	Log      logging.Config           `yaml:"log"`
	Metrics  MetricsConfig            `yaml:"metrics"`
	Services map[string]ServiceConfig `yaml:"services"`
}

// MetricsConfig configures the prometheus HTTP endpoint
type MetricsConfig struct {
	// Addr is the address the /metrics endpoint listens on. If blank, then metrics are not exposed.
	Addr string `yaml:"addr"`
}

// ServiceConfig overrides service settings. Zero values mean the service default is used.
type ServiceConfig struct {
	Workers        int      `yaml:"workers"`
	QueueSize      int      `yaml:"queueSize"`
	DequeueTimeout Duration `yaml:"dequeueTimeout"`
}

// Duration is a time.Duration that is configured using Go duration strings, e.g., "100ms"
type Duration time.Duration

// UnmarshalYAML parses the duration string
func (a *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w : %v", ErrInvalidDuration, err)
	}
	*a = Duration(d)
	return nil
}

// MarshalYAML renders the duration as a Go duration string
func (a Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(a).String(), nil
}

// Default returns the configuration that is used when no config file is specified
func Default() *Config {
	return &Config{
		Log:      logging.Config{Level: "INFO"},
		Services: map[string]ServiceConfig{},
	}
}

// Load reads the YAML config file. Settings that are not specified in the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s : %w", path, err)
	}
	return Parse(data)
}

// Parse parses the YAML config and validates it
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config : %w", err)
	}
	if config.Services == nil {
		config.Services = map[string]ServiceConfig{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the log level and the service settings
func (a *Config) Validate() error {
	if _, err := logging.ParseLevel(a.Log.Level); err != nil {
		return err
	}
	for name, svc := range a.Services {
		if svc.Workers < 0 || svc.QueueSize < 0 || svc.DequeueTimeout < 0 {
			return &InvalidServiceConfigError{Service: name, Config: svc}
		}
	}
	return nil
}

// Service returns the config for the named service. If the service is not configured, then the zero value is returned,
// which leaves the service defaults unchanged.
func (a *Config) Service(name string) ServiceConfig {
	return a.Services[name]
}

// Apply overrides the settings that are configured
func (a ServiceConfig) Apply(settings *service.Settings) {
	if a.Workers > 0 {
		settings.Workers = a.Workers
	}
	if a.QueueSize > 0 {
		settings.QueueSize = a.QueueSize
	}
	if a.DequeueTimeout > 0 {
		settings.DequeueTimeout = time.Duration(a.DequeueTimeout)
	}
}
