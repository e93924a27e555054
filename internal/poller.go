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
	"context"
	"fmt"
	"time"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	v1 "github.com/apimeister/tibco-ems-operator/pkg/apis/tibcoems/v1"
	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
)

// QueueStatsPoller periodically snapshots queue statistics from the EMS
// server, refreshes the stats cache, feeds the scaler, and writes changed
// statistics back into Queue statuses. Ticks are serial; two ticks never
// overlap.
type QueueStatsPoller struct {
	api     KubeAPI
	admin   broker.Admin
	caches  *Caches
	options *Options
	scaler  *Scaler
	fail    FailHandler
}

// NewQueueStatsPoller returns a new QueueStatsPoller. scaler may be nil when
// scaling is disabled.
func NewQueueStatsPoller(api KubeAPI, admin broker.Admin, caches *Caches, options *Options, scaler *Scaler, fail FailHandler) *QueueStatsPoller {
	return &QueueStatsPoller{
		api:     api,
		admin:   admin,
		caches:  caches,
		options: options,
		scaler:  scaler,
		fail:    fail,
	}
}

// Run polls until ctx is done.
func (p *QueueStatsPoller) Run(ctx context.Context) error {
	interval := time.Duration(*p.options.StatusRefreshInMS) * time.Millisecond
	wait.UntilWithContext(ctx, p.tick, interval)

	return ctx.Err()
}

func (p *QueueStatsPoller) tick(ctx context.Context) {
	logger := klog.FromContext(ctx)
	start := time.Now()
	list, err := p.admin.ListAllQueues(ctx)
	if err != nil {
		p.fail(err, "failed to retrieve queue information")

		return
	}
	for _, info := range list {
		p.caches.SetQueueStats(info)
		if p.scaler != nil {
			p.scaler.Feed(ctx, info.Name, info.PendingMessages, info.OutgoingTotalCount)
		}
		if !*p.options.ReadOnly {
			p.updateStatus(ctx, info)
		}
	}
	logger.V(4).Info("Queue statistics refreshed", "count", len(list), "durationMS", time.Since(start).Milliseconds())
}

// updateStatus reflects fresh statistics into the Queue's status subresource,
// if the operator owns the destination and the values changed.
func (p *QueueStatsPoller) updateStatus(ctx context.Context, info broker.QueueInfo) {
	logger := klog.FromContext(ctx)
	cached, ok := p.caches.KnownQueue(info.Name)
	if !ok {
		// Not a destination this operator instance reconciles.
		return
	}
	fresh := &v1.QueueStatus{
		PendingMessages: info.PendingMessages,
		ConsumerCount:   info.ConsumerCount,
	}
	if cached.Status != nil && *cached.Status == *fresh {
		return
	}
	logger.V(4).Info("Updating queue status", "queue", info.Name, "[-old +new]", cmp.Diff(cached.Status, fresh))
	cached.Status = fresh
	p.caches.SetKnownQueue(info.Name, cached)

	// Fetch the latest resource version right before the write to avoid a
	// conflict with concurrent metadata updates.
	latest, err := p.api.Get(ctx, queuesResource, cached.GetName())
	if err != nil {
		logger.Error(fmt.Errorf("error getting queue %s: %w", cached.GetName(), err), "cannot update queue status")

		return
	}
	cached.SetResourceVersion(latest.GetResourceVersion())
	if err := replaceQueueStatus(ctx, p.api, cached); err != nil {
		logger.Error(err, "Error while updating queue object", "queue", info.Name)
	}
}

// TopicStatsPoller periodically snapshots topic statistics from the EMS
// server, refreshes the stats cache, and writes changed statistics back into
// Topic statuses.
type TopicStatsPoller struct {
	api     KubeAPI
	admin   broker.Admin
	caches  *Caches
	options *Options
	fail    FailHandler
}

// NewTopicStatsPoller returns a new TopicStatsPoller.
func NewTopicStatsPoller(api KubeAPI, admin broker.Admin, caches *Caches, options *Options, fail FailHandler) *TopicStatsPoller {
	return &TopicStatsPoller{
		api:     api,
		admin:   admin,
		caches:  caches,
		options: options,
		fail:    fail,
	}
}

// Run polls until ctx is done.
func (p *TopicStatsPoller) Run(ctx context.Context) error {
	interval := time.Duration(*p.options.StatusRefreshInMS) * time.Millisecond
	wait.UntilWithContext(ctx, p.tick, interval)

	return ctx.Err()
}

func (p *TopicStatsPoller) tick(ctx context.Context) {
	logger := klog.FromContext(ctx)
	start := time.Now()
	list, err := p.admin.ListAllTopics(ctx)
	if err != nil {
		p.fail(err, "failed to retrieve topic information")

		return
	}
	for _, info := range list {
		p.caches.SetTopicStats(info)
		if !*p.options.ReadOnly {
			p.updateStatus(ctx, info)
		}
	}
	logger.V(4).Info("Topic statistics refreshed", "count", len(list), "durationMS", time.Since(start).Milliseconds())
}

func (p *TopicStatsPoller) updateStatus(ctx context.Context, info broker.TopicInfo) {
	logger := klog.FromContext(ctx)
	cached, ok := p.caches.KnownTopic(info.Name)
	if !ok {
		return
	}
	fresh := &v1.TopicStatus{
		PendingMessages: info.PendingMessages,
		Subscribers:     info.SubscriberCount,
		Durables:        info.DurableCount,
	}
	if cached.Status != nil && *cached.Status == *fresh {
		return
	}
	logger.V(4).Info("Updating topic status", "topic", info.Name, "[-old +new]", cmp.Diff(cached.Status, fresh))
	cached.Status = fresh
	p.caches.SetKnownTopic(info.Name, cached)

	latest, err := p.api.Get(ctx, topicsResource, cached.GetName())
	if err != nil {
		logger.Error(fmt.Errorf("error getting topic %s: %w", cached.GetName(), err), "cannot update topic status")

		return
	}
	cached.SetResourceVersion(latest.GetResourceVersion())
	if err := replaceTopicStatus(ctx, p.api, cached); err != nil {
		logger.Error(err, "Error while updating topic object", "topic", info.Name)
	}
}
