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
	"sync"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	v1 "github.com/apimeister/tibco-ems-operator/pkg/apis/tibcoems/v1"
	gocache "github.com/patrickmn/go-cache"
)

// Caches holds the process-wide shared state: the broker-visible destination
// statistics and the set of custom resources this operator instance has
// reconciled. One Caches value is constructed at startup and passed into every
// long-lived task.
//
// Statistics entries never expire; the pollers overwrite every listed entry on
// each tick, and entries for destinations no longer listed are not removed.
// Known-resource accessors copy on both read and write so no entry is
// shared across a lock release.
type Caches struct {
	queueStats *gocache.Cache
	topicStats *gocache.Cache

	knownQueuesMu sync.Mutex
	knownQueues   map[string]*v1.Queue

	knownTopicsMu sync.Mutex
	knownTopics   map[string]*v1.Topic

	knownBridgesMu sync.Mutex
	knownBridges   map[string]*v1.Bridge
}

// NewCaches returns an empty Caches.
func NewCaches() *Caches {
	return &Caches{
		queueStats:   gocache.New(gocache.NoExpiration, 0),
		topicStats:   gocache.New(gocache.NoExpiration, 0),
		knownQueues:  make(map[string]*v1.Queue),
		knownTopics:  make(map[string]*v1.Topic),
		knownBridges: make(map[string]*v1.Bridge),
	}
}

// SetQueueStats records the latest administrative view of a queue destination.
func (c *Caches) SetQueueStats(info broker.QueueInfo) {
	c.queueStats.Set(info.Name, info, gocache.NoExpiration)
}

// QueueStats returns the last recorded view of the named queue destination.
func (c *Caches) QueueStats(name string) (broker.QueueInfo, bool) {
	item, ok := c.queueStats.Get(name)
	if !ok {
		return broker.QueueInfo{}, false
	}

	return item.(broker.QueueInfo), true
}

// QueueStatsSnapshot returns a copy of all recorded queue statistics.
func (c *Caches) QueueStatsSnapshot() map[string]broker.QueueInfo {
	items := c.queueStats.Items()
	snapshot := make(map[string]broker.QueueInfo, len(items))
	for name, item := range items {
		snapshot[name] = item.Object.(broker.QueueInfo)
	}

	return snapshot
}

// SetTopicStats records the latest administrative view of a topic destination.
func (c *Caches) SetTopicStats(info broker.TopicInfo) {
	c.topicStats.Set(info.Name, info, gocache.NoExpiration)
}

// TopicStats returns the last recorded view of the named topic destination.
func (c *Caches) TopicStats(name string) (broker.TopicInfo, bool) {
	item, ok := c.topicStats.Get(name)
	if !ok {
		return broker.TopicInfo{}, false
	}

	return item.(broker.TopicInfo), true
}

// TopicStatsSnapshot returns a copy of all recorded topic statistics.
func (c *Caches) TopicStatsSnapshot() map[string]broker.TopicInfo {
	items := c.topicStats.Items()
	snapshot := make(map[string]broker.TopicInfo, len(items))
	for name, item := range items {
		snapshot[name] = item.Object.(broker.TopicInfo)
	}

	return snapshot
}

// KnownQueue returns a copy of the reconciled Queue registered under the given
// broker-side destination name.
func (c *Caches) KnownQueue(brokerName string) (*v1.Queue, bool) {
	c.knownQueuesMu.Lock()
	defer c.knownQueuesMu.Unlock()
	queue, ok := c.knownQueues[brokerName]
	if !ok {
		return nil, false
	}

	return queue.DeepCopy(), true
}

// SetKnownQueue registers a reconciled Queue under its broker-side destination name.
func (c *Caches) SetKnownQueue(brokerName string, queue *v1.Queue) {
	c.knownQueuesMu.Lock()
	defer c.knownQueuesMu.Unlock()
	c.knownQueues[brokerName] = queue.DeepCopy()
}

// DeleteKnownQueue removes the Queue registered under the given broker-side name.
func (c *Caches) DeleteKnownQueue(brokerName string) {
	c.knownQueuesMu.Lock()
	defer c.knownQueuesMu.Unlock()
	delete(c.knownQueues, brokerName)
}

// KnownQueueNames returns the broker-side names of all reconciled Queues.
func (c *Caches) KnownQueueNames() []string {
	c.knownQueuesMu.Lock()
	defer c.knownQueuesMu.Unlock()
	names := make([]string, 0, len(c.knownQueues))
	for name := range c.knownQueues {
		names = append(names, name)
	}

	return names
}

// KnownTopic returns a copy of the reconciled Topic registered under the given
// broker-side destination name.
func (c *Caches) KnownTopic(brokerName string) (*v1.Topic, bool) {
	c.knownTopicsMu.Lock()
	defer c.knownTopicsMu.Unlock()
	topic, ok := c.knownTopics[brokerName]
	if !ok {
		return nil, false
	}

	return topic.DeepCopy(), true
}

// SetKnownTopic registers a reconciled Topic under its broker-side destination name.
func (c *Caches) SetKnownTopic(brokerName string, topic *v1.Topic) {
	c.knownTopicsMu.Lock()
	defer c.knownTopicsMu.Unlock()
	c.knownTopics[brokerName] = topic.DeepCopy()
}

// DeleteKnownTopic removes the Topic registered under the given broker-side name.
func (c *Caches) DeleteKnownTopic(brokerName string) {
	c.knownTopicsMu.Lock()
	defer c.knownTopicsMu.Unlock()
	delete(c.knownTopics, brokerName)
}

// KnownBridge returns a copy of the reconciled Bridge registered under the
// given object name.
func (c *Caches) KnownBridge(name string) (*v1.Bridge, bool) {
	c.knownBridgesMu.Lock()
	defer c.knownBridgesMu.Unlock()
	bridge, ok := c.knownBridges[name]
	if !ok {
		return nil, false
	}

	return bridge.DeepCopy(), true
}

// SetKnownBridge registers a reconciled Bridge under its object name.
func (c *Caches) SetKnownBridge(name string, bridge *v1.Bridge) {
	c.knownBridgesMu.Lock()
	defer c.knownBridgesMu.Unlock()
	c.knownBridges[name] = bridge.DeepCopy()
}

// DeleteKnownBridge removes the Bridge registered under the given object name.
func (c *Caches) DeleteKnownBridge(name string) {
	c.knownBridgesMu.Lock()
	defer c.knownBridgesMu.Unlock()
	delete(c.knownBridges, name)
}
