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
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// FindMetricFamilyByName finds a MetricFamily by name.
// nil is returned if no match is found
func FindMetricFamilyByName(gatheredMetrics []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, m := range gatheredMetrics {
		if m.GetName() == name {
			return m
		}
	}
	return nil
}

// FindMetric finds the metric within the family whose labels include all of the specified label pairs.
// nil is returned if no match is found
func FindMetric(family *dto.MetricFamily, labels prometheus.Labels) *dto.Metric {
	if family == nil {
		return nil
	}
MetricLoop:
	for _, m := range family.GetMetric() {
		for name, value := range labels {
			if !hasLabel(m, name, value) {
				continue MetricLoop
			}
		}
		return m
	}
	return nil
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, pair := range m.GetLabel() {
		if pair.GetName() == name && pair.GetValue() == value {
			return true
		}
	}
	return false
}

// CounterValue gathers the metrics and returns the counter value for the specified labels.
// 0 is returned if the counter has not been reported.
func CounterValue(gatherer prometheus.Gatherer, name string, labels prometheus.Labels) (float64, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return 0, err
	}
	return FindMetric(FindMetricFamilyByName(families, name), labels).GetCounter().GetValue(), nil
}

// GaugeValue gathers the metrics and returns the gauge value for the specified labels.
// 0 is returned if the gauge has not been reported.
func GaugeValue(gatherer prometheus.Gatherer, name string, labels prometheus.Labels) (float64, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return 0, err
	}
	return FindMetric(FindMetricFamilyByName(families, name), labels).GetGauge().GetValue(), nil
}

// CounterFQName returns the fully qualified name for the counter.
func CounterFQName(opts *prometheus.CounterOpts) string {
	o := prometheus.Opts(*opts)
	return MetricFQName(&o)
}

// GaugeFQName returns the fully qualified name for the gauge.
func GaugeFQName(opts *prometheus.GaugeOpts) string {
	o := prometheus.Opts(*opts)
	return MetricFQName(&o)
}

func MetricFQName(opts *prometheus.Opts) string {
	return prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
}
