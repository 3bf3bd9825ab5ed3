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

package metrics

import (
	"errors"
	"fmt"

	"github.com/oysterpack/svcbus/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// CounterVecOpts are the opts for a counter vector
type CounterVecOpts struct {
	*prometheus.CounterOpts
	Labels []string
}

// GaugeVecOpts are the opts for a gauge vector
type GaugeVecOpts struct {
	*prometheus.GaugeOpts
	Labels []string
}

// HistogramVecOpts are the opts for a histogram vector
type HistogramVecOpts struct {
	*prometheus.HistogramOpts
	Labels []string
}

// GetOrMustRegisterCounterVec registers the counter vector with the registerer.
// If an equal counter vector is already registered, then the registered one is returned.
// If the name is used by a different kind of collector, or the name is blank, then a panic is triggered.
func GetOrMustRegisterCounterVec(registerer prometheus.Registerer, opts *CounterVecOpts) *prometheus.CounterVec {
	const FUNC = "GetOrMustRegisterCounterVec"
	checkName(FUNC, opts.Name)
	collector := getOrMustRegister(FUNC, registerer, prometheus.NewCounterVec(*opts.CounterOpts, opts.Labels))
	counterVec, ok := collector.(*prometheus.CounterVec)
	if !ok {
		mustNotBeUsedByDifferentType(FUNC, opts.Name, collector)
	}
	return counterVec
}

// GetOrMustRegisterGaugeVec registers the gauge vector with the registerer.
// If an equal gauge vector is already registered, then the registered one is returned.
// If the name is used by a different kind of collector, or the name is blank, then a panic is triggered.
func GetOrMustRegisterGaugeVec(registerer prometheus.Registerer, opts *GaugeVecOpts) *prometheus.GaugeVec {
	const FUNC = "GetOrMustRegisterGaugeVec"
	checkName(FUNC, opts.Name)
	collector := getOrMustRegister(FUNC, registerer, prometheus.NewGaugeVec(*opts.GaugeOpts, opts.Labels))
	gaugeVec, ok := collector.(*prometheus.GaugeVec)
	if !ok {
		mustNotBeUsedByDifferentType(FUNC, opts.Name, collector)
	}
	return gaugeVec
}

// GetOrMustRegisterHistogramVec registers the histogram vector with the registerer.
// If an equal histogram vector is already registered, then the registered one is returned.
// If the name is used by a different kind of collector, or the name is blank, then a panic is triggered.
func GetOrMustRegisterHistogramVec(registerer prometheus.Registerer, opts *HistogramVecOpts) *prometheus.HistogramVec {
	const FUNC = "GetOrMustRegisterHistogramVec"
	checkName(FUNC, opts.Name)
	collector := getOrMustRegister(FUNC, registerer, prometheus.NewHistogramVec(*opts.HistogramOpts, opts.Labels))
	histogramVec, ok := collector.(*prometheus.HistogramVec)
	if !ok {
		mustNotBeUsedByDifferentType(FUNC, opts.Name, collector)
	}
	return histogramVec
}

func getOrMustRegister(FUNC string, registerer prometheus.Registerer, collector prometheus.Collector) prometheus.Collector {
	if err := registerer.Register(collector); err != nil {
		alreadyRegistered := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &alreadyRegistered) {
			return alreadyRegistered.ExistingCollector
		}
		logger.Panic().Str(logging.FUNC, FUNC).Err(err).Msg("")
	}
	return collector
}

func checkName(FUNC, name string) {
	if name == "" {
		logger.Panic().Str(logging.FUNC, FUNC).Err(ErrMetricNameCannotBeBlank).Msg("")
	}
}

func mustNotBeUsedByDifferentType(FUNC, name string, collector prometheus.Collector) {
	logger.Panic().Str(logging.FUNC, FUNC).
		Str("name", name).
		Str("registered_type", fmt.Sprintf("%T", collector)).
		Err(ErrMetricNameUsedByDifferentMetricType).
		Msg("")
}
