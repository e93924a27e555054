/*
Copyright 2025 The tibco-ems-operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// instanceLabel tags every exported series with the broker instance the
// scrapers expect.
var instanceLabel = prometheus.Labels{"instance": "EMS-ESB"}

// Metric names keep the legacy Q:/T: prefixes; dashboards and alerts select
// on them.
var (
	queuePendingDesc = prometheus.NewDesc(
		"Q:pendingMessages",
		"Number of messages pending on the queue.",
		[]string{"queue"}, instanceLabel,
	)
	queueConsumersDesc = prometheus.NewDesc(
		"Q:consumers",
		"Number of active consumers on the queue.",
		[]string{"queue"}, instanceLabel,
	)
	topicPendingDesc = prometheus.NewDesc(
		"T:pendingMessages",
		"Number of messages pending on the topic.",
		[]string{"topic"}, instanceLabel,
	)
	topicSubscribersDesc = prometheus.NewDesc(
		"T:subscribers",
		"Number of subscribers on the topic.",
		[]string{"topic"}, instanceLabel,
	)
	topicDurablesDesc = prometheus.NewDesc(
		"T:durables",
		"Number of durable subscriptions on the topic.",
		[]string{"topic"}, instanceLabel,
	)
)

// statsCollector exposes the destination statistics caches as Prometheus
// gauges. Collection snapshots the caches, so a scrape never blocks a poller
// beyond the copy.
type statsCollector struct {
	caches *Caches
}

// Ensure statsCollector implements prometheus.Collector.
var _ prometheus.Collector = &statsCollector{}

// NewStatsCollector returns a collector over the given caches.
func NewStatsCollector(caches *Caches) prometheus.Collector {
	return &statsCollector{caches: caches}
}

// Describe implements prometheus.Collector.
func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queuePendingDesc
	ch <- queueConsumersDesc
	ch <- topicPendingDesc
	ch <- topicSubscribersDesc
	ch <- topicDurablesDesc
}

// Collect implements prometheus.Collector.
func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	for name, info := range c.caches.QueueStatsSnapshot() {
		ch <- prometheus.MustNewConstMetric(queuePendingDesc, prometheus.GaugeValue, float64(info.PendingMessages), name)
		ch <- prometheus.MustNewConstMetric(queueConsumersDesc, prometheus.GaugeValue, float64(info.ConsumerCount), name)
	}
	for name, info := range c.caches.TopicStatsSnapshot() {
		ch <- prometheus.MustNewConstMetric(topicPendingDesc, prometheus.GaugeValue, float64(info.PendingMessages), name)
		ch <- prometheus.MustNewConstMetric(topicSubscribersDesc, prometheus.GaugeValue, float64(info.SubscriberCount), name)
		ch <- prometheus.MustNewConstMetric(topicDurablesDesc, prometheus.GaugeValue, float64(info.DurableCount), name)
	}
}
