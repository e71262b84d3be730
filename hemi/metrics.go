// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Metrics of parsing.

package hemi

import (
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mpform"

const ( // parse results
	ResultOK          = "ok"
	ResultHeaderError = "header_error"
	ResultBodyError   = "body_error"
)

// ResultOf classifies an error returned by Parse.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrHeaderParse):
		return ResultHeaderError
	default:
		return ResultBodyError
	}
}

// Collector is a prometheus.Collector that collects metrics about parsing.
type Collector struct {
	parses     *prometheus.CounterVec
	parts      prometheus.Histogram
	arenaBytes prometheus.Histogram
}

func NewCollector() *Collector {
	return &Collector{
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "parses_total",
				Help:      "The number of multipart/form-data parses by result.",
			}, []string{"result"},
		),
		parts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "parts",
				Help:      "The number of parts in a successfully parsed form.",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
			},
		),
		arenaBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "arena_bytes",
				Help:      "The number of arena bytes used by a parse.",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
	}
}

// Observe records a parse. data may be nil if err is not nil.
func (c *Collector) Observe(data *FormData, arenaUsed int64, err error) {
	c.parses.WithLabelValues(ResultOf(err)).Inc()
	c.arenaBytes.Observe(float64(arenaUsed))
	if err == nil && data != nil {
		c.parts.Observe(float64(len(data.Parts)))
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.parses.Describe(ch)
	c.parts.Describe(ch)
	c.arenaBytes.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.parses.Collect(ch)
	c.parts.Collect(ch)
	c.arenaBytes.Collect(ch)
}
