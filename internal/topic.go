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

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	v1 "github.com/apimeister/tibco-ems-operator/pkg/apis/tibcoems/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/klog/v2"
)

// TopicReconciler maintains topic destinations on the EMS server consistent
// with Topic resources in the cluster.
type TopicReconciler struct {
	api     KubeAPI
	admin   broker.Admin
	caches  *Caches
	options *Options
	fail    FailHandler
}

// NewTopicReconciler returns a new TopicReconciler.
func NewTopicReconciler(api KubeAPI, admin broker.Admin, caches *Caches, options *Options, fail FailHandler) *TopicReconciler {
	return &TopicReconciler{
		api:     api,
		admin:   admin,
		caches:  caches,
		options: options,
		fail:    fail,
	}
}

// Run watches Topic resources until ctx is done.
func (r *TopicReconciler) Run(ctx context.Context) error {
	logger := klog.FromContext(ctx)
	logger.V(1).Info("Subscribing events", "type", "topics.tibcoems.apimeister.com/v1")

	return watchLoop(ctx, r.api, topicsResource, ownerSelector(*r.options.ResponsibleFor), newWatchLimiter(), r.dispatch)
}

func (r *TopicReconciler) dispatch(ctx context.Context, event watch.Event) {
	logger := klog.FromContext(ctx)
	topic := &v1.Topic{}
	if err := fromUnstructured(event.Object, topic); err != nil {
		logger.Error(err, "Failed to decode event object", "type", event.Type)

		return
	}

	switch event.Type {
	case watch.Added:
		r.handleAdded(ctx, topic)
	case watch.Modified:
		r.handleModified(ctx, topic)
	case watch.Deleted:
		r.handleDeleted(ctx, topic)
	}
}

func (r *TopicReconciler) handleAdded(ctx context.Context, topic *v1.Topic) {
	logger := klog.FromContext(ctx)
	brokerName := topic.BrokerName()
	if _, ok := r.caches.KnownTopic(brokerName); ok {
		logger.V(4).Info("Topic already known", "topic", brokerName)

		return
	}

	logger.V(1).Info("Adding topic", "topic", brokerName, "object", klog.KObj(topic))
	statusWasEmpty := topic.Status == nil
	if err := r.admin.CreateTopic(ctx, broker.TopicInfoFromSpec(topic)); err != nil {
		r.fail(err, fmt.Sprintf("failed to create topic %s", brokerName))

		return
	}
	topic.PropagateDefaults()
	r.caches.SetKnownTopic(brokerName, topic)

	if statusWasEmpty {
		if err := replaceTopicStatus(ctx, r.api, topic); err != nil {
			logger.Error(err, "Failed to write default status", "topic", brokerName, "object", klog.KObj(topic))
		}
	}
}

func (r *TopicReconciler) handleModified(ctx context.Context, topic *v1.Topic) {
	logger := klog.FromContext(ctx)
	brokerName := topic.BrokerName()
	logger.V(1).Info("Recreating topic", "topic", brokerName, "object", klog.KObj(topic))
	if err := r.admin.CreateTopic(ctx, broker.TopicInfoFromSpec(topic)); err != nil {
		r.fail(err, fmt.Sprintf("failed to recreate topic %s", brokerName))

		return
	}
	topic.PropagateDefaults()
	r.caches.SetKnownTopic(brokerName, topic)
}

func (r *TopicReconciler) handleDeleted(ctx context.Context, topic *v1.Topic) {
	logger := klog.FromContext(ctx)
	brokerName := topic.BrokerName()
	if *r.options.DoNotDeleteObjects {
		logger.Info("Delete topic not executed because of DO_NOT_DELETE_OBJECTS setting", "topic", brokerName)
	} else {
		logger.V(1).Info("Deleting topic", "topic", brokerName)
		if err := r.admin.DeleteTopic(ctx, brokerName); err != nil {
			r.fail(err, fmt.Sprintf("failed to delete topic %s", brokerName))

			return
		}
	}
	r.caches.DeleteKnownTopic(brokerName)
}

// replaceTopicStatus sends the topic's status subresource to the API server.
func replaceTopicStatus(ctx context.Context, api KubeAPI, topic *v1.Topic) error {
	topic = topic.DeepCopy()
	topic.TypeMeta.APIVersion = v1.SchemeGroupVersion.String()
	topic.TypeMeta.Kind = "Topic"
	obj, err := toUnstructured(topic)
	if err != nil {
		return fmt.Errorf("error converting topic %s: %w", topic.GetName(), err)
	}

	return api.ReplaceStatus(ctx, topicsResource, obj)
}
