// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes named meters backed by Prometheus once enabled.
// Until then every meter is a no-op.
package metrics

import (
	"net/http"
	"sync"
)

var (
	// BucketWork buckets scheduling tick work units.
	BucketWork = []int64{10_000, 20_000, 30_000, 50_000, 75_000, 100_000, 150_000, 250_000}
	// BucketHTTPReqs buckets request durations in milliseconds.
	BucketHTTPReqs = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
)

// provider creates meters by name. Asking twice for a name returns the same meter.
type provider interface {
	counter(name string) CountMeter
	counterVec(name string, labels []string) CountVecMeter
	gauge(name string) GaugeMeter
	gaugeVec(name string, labels []string) GaugeVecMeter
	histogram(name string, buckets []int64) HistogramMeter
	handler() http.Handler
}

var current provider = noop{}

// Enabled reports whether meters are being recorded.
func Enabled() bool {
	_, ok := current.(noop)
	return !ok
}

// HTTPHandler serves the recorded meters, or 404 when disabled.
func HTTPHandler() http.Handler {
	return current.handler()
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a counter partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a value that can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// GaugeVecMeter is a gauge partitioned by labels.
type GaugeVecMeter interface {
	SetWithLabel(int64, map[string]string)
}

// HistogramMeter aggregates observations into buckets.
type HistogramMeter interface {
	Observe(int64)
}

func Counter(name string) CountMeter { return current.counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return current.counterVec(name, labels)
}

func Gauge(name string) GaugeMeter { return current.gauge(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current.gaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current.histogram(name, buckets)
}

// LazyLoad defers creating a meter until first use, so package level meters
// bind to whichever provider is installed at that time.
func LazyLoad[T any](f func() T) func() T {
	return sync.OnceValue(f)
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

type noop struct{}

func (noop) counter(string) CountMeter                 { return noop{} }
func (noop) counterVec(string, []string) CountVecMeter { return noop{} }
func (noop) gauge(string) GaugeMeter                   { return noop{} }
func (noop) gaugeVec(string, []string) GaugeVecMeter   { return noop{} }
func (noop) histogram(string, []int64) HistogramMeter  { return noop{} }
func (noop) handler() http.Handler                     { return http.NotFoundHandler() }
func (noop) Add(int64)                                 {}
func (noop) AddWithLabel(int64, map[string]string)     {}
func (noop) Set(int64)                                 {}
func (noop) SetWithLabel(int64, map[string]string)     {}
func (noop) Observe(int64)                             {}
