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
	"net/http"

	"golang.org/x/time/rate"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/klog/v2"
)

// ownerLabel partitions resources across operator instances sharing a cluster.
const ownerLabel = "tibcoems.apimeister.com/owner"

// ownerSelector returns the label selector implementing the ownership
// partition: resources carrying the configured tag when one is set, resources
// without the label otherwise.
func ownerSelector(responsibleFor string) string {
	if responsibleFor != "" {
		return ownerLabel + "=" + responsibleFor
	}

	return "!" + ownerLabel
}

// watchLoop runs the shared restartable watch algorithm: establish a watch at
// the recorded resource-version cursor, hand every Added/Modified/Deleted
// event to dispatch, and re-establish the watch when the stream ends. Error
// events rewind the cursor to "0", which turns the next establish into a full
// list; an expired cursor (410 Expired) does so silently. Reconnects are paced
// by the limiter so a flapping API server is not hammered.
//
// The loop returns only once ctx is done.
func watchLoop(
	ctx context.Context,
	api KubeAPI,
	gvr schema.GroupVersionResource,
	labelSelector string,
	limiter *rate.Limiter,
	dispatch func(ctx context.Context, event watch.Event),
) error {
	logger := klog.FromContext(ctx)
	lastRV := "0"
	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		logger.V(4).Info("Establishing watch", "resource", gvr.Resource, "sinceRV", lastRV)
		stream, err := api.Watch(ctx, gvr, labelSelector, lastRV)
		if err != nil {
			logger.V(4).Info("Error establishing watch, retrying", "resource", gvr.Resource, "err", err)

			continue
		}
		lastRV = consumeStream(ctx, stream, lastRV, dispatch)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// consumeStream drains one watch stream, returning the cursor to resume from.
func consumeStream(
	ctx context.Context,
	stream watch.Interface,
	lastRV string,
	dispatch func(ctx context.Context, event watch.Event),
) string {
	logger := klog.FromContext(ctx)
	defer stream.Stop()
	for {
		select {
		case <-ctx.Done():
			return lastRV
		case event, ok := <-stream.ResultChan():
			if !ok {
				logger.V(4).Info("Watch stream ended")

				return lastRV
			}
			switch event.Type {
			case watch.Error:
				if isExpiredCursor(event.Object) {
					logger.V(4).Info("Resource version too old, resetting offset to 0")
				} else {
					logger.Error(nil, "Watch error, resetting offset to 0", "object", event.Object)
				}
				lastRV = "0"
			case watch.Bookmark:
				if accessor, err := meta.Accessor(event.Object); err == nil {
					lastRV = accessor.GetResourceVersion()
				}
			default:
				dispatch(ctx, event)
				if accessor, err := meta.Accessor(event.Object); err == nil {
					lastRV = accessor.GetResourceVersion()
				}
			}
		}
	}
}

// isExpiredCursor reports whether a watch error event signals an expired
// resource-version cursor (HTTP 410 Expired).
func isExpiredCursor(obj interface{}) bool {
	status, ok := obj.(*metav1.Status)
	if !ok {
		return false
	}

	return status.Code == http.StatusGone && status.Reason == metav1.StatusReasonExpired
}

// newWatchLimiter paces watch re-establishment.
func newWatchLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(1), 5)
}
