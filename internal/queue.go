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

// QueueReconciler maintains queue destinations on the EMS server consistent
// with Queue resources in the cluster.
type QueueReconciler struct {
	api     KubeAPI
	admin   broker.Admin
	caches  *Caches
	options *Options
	fail    FailHandler
}

// NewQueueReconciler returns a new QueueReconciler.
func NewQueueReconciler(api KubeAPI, admin broker.Admin, caches *Caches, options *Options, fail FailHandler) *QueueReconciler {
	return &QueueReconciler{
		api:     api,
		admin:   admin,
		caches:  caches,
		options: options,
		fail:    fail,
	}
}

// Run watches Queue resources until ctx is done.
func (r *QueueReconciler) Run(ctx context.Context) error {
	logger := klog.FromContext(ctx)
	logger.V(1).Info("Subscribing events", "type", "queues.tibcoems.apimeister.com/v1")

	return watchLoop(ctx, r.api, queuesResource, ownerSelector(*r.options.ResponsibleFor), newWatchLimiter(), r.dispatch)
}

// dispatch handles a single watch event.
func (r *QueueReconciler) dispatch(ctx context.Context, event watch.Event) {
	logger := klog.FromContext(ctx)
	queue := &v1.Queue{}
	if err := fromUnstructured(event.Object, queue); err != nil {
		logger.Error(err, "Failed to decode event object", "type", event.Type)

		return
	}

	switch event.Type {
	case watch.Added:
		r.handleAdded(ctx, queue)
	case watch.Modified:
		r.handleModified(ctx, queue)
	case watch.Deleted:
		r.handleDeleted(ctx, queue)
	}
}

func (r *QueueReconciler) handleAdded(ctx context.Context, queue *v1.Queue) {
	logger := klog.FromContext(ctx)
	brokerName := queue.BrokerName()
	if _, ok := r.caches.KnownQueue(brokerName); ok {
		logger.V(4).Info("Queue already known", "queue", brokerName)

		return
	}

	logger.V(1).Info("Adding queue", "queue", brokerName, "object", klog.KObj(queue))
	statusWasEmpty := queue.Status == nil
	if err := r.admin.CreateQueue(ctx, broker.QueueInfoFromSpec(queue)); err != nil {
		r.fail(err, fmt.Sprintf("failed to create queue %s", brokerName))

		return
	}
	queue.PropagateDefaults()
	r.caches.SetKnownQueue(brokerName, queue)

	if statusWasEmpty {
		if err := replaceQueueStatus(ctx, r.api, queue); err != nil {
			logger.Error(err, "Failed to write default status", "queue", brokerName, "object", klog.KObj(queue))
		}
	}
}

func (r *QueueReconciler) handleModified(ctx context.Context, queue *v1.Queue) {
	logger := klog.FromContext(ctx)
	brokerName := queue.BrokerName()
	logger.V(1).Info("Recreating queue", "queue", brokerName, "object", klog.KObj(queue))

	// The admin adapter treats recreate of an existing destination as an
	// idempotent property update.
	if err := r.admin.CreateQueue(ctx, broker.QueueInfoFromSpec(queue)); err != nil {
		r.fail(err, fmt.Sprintf("failed to recreate queue %s", brokerName))

		return
	}
	queue.PropagateDefaults()
	r.caches.SetKnownQueue(brokerName, queue)
}

func (r *QueueReconciler) handleDeleted(ctx context.Context, queue *v1.Queue) {
	logger := klog.FromContext(ctx)
	brokerName := queue.BrokerName()
	if *r.options.DoNotDeleteObjects {
		logger.Info("Delete queue not executed because of DO_NOT_DELETE_OBJECTS setting", "queue", brokerName)
	} else {
		logger.V(1).Info("Deleting queue", "queue", brokerName)
		if err := r.admin.DeleteQueue(ctx, brokerName); err != nil {
			r.fail(err, fmt.Sprintf("failed to delete queue %s", brokerName))

			return
		}
	}
	r.caches.DeleteKnownQueue(brokerName)
}

// replaceQueueStatus sends the queue's status subresource to the API server.
func replaceQueueStatus(ctx context.Context, api KubeAPI, queue *v1.Queue) error {
	queue = queue.DeepCopy()
	queue.TypeMeta.APIVersion = v1.SchemeGroupVersion.String()
	queue.TypeMeta.Kind = "Queue"
	obj, err := toUnstructured(queue)
	if err != nil {
		return fmt.Errorf("error converting queue %s: %w", queue.GetName(), err)
	}

	return api.ReplaceStatus(ctx, queuesResource, obj)
}
