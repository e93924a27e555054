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

// BridgeReconciler maintains bridges on the EMS server consistent with Bridge
// resources in the cluster. Bridges carry no status subresource.
type BridgeReconciler struct {
	api     KubeAPI
	admin   broker.Admin
	caches  *Caches
	options *Options
	fail    FailHandler
}

// NewBridgeReconciler returns a new BridgeReconciler.
func NewBridgeReconciler(api KubeAPI, admin broker.Admin, caches *Caches, options *Options, fail FailHandler) *BridgeReconciler {
	return &BridgeReconciler{
		api:     api,
		admin:   admin,
		caches:  caches,
		options: options,
		fail:    fail,
	}
}

// Run watches Bridge resources until ctx is done.
func (r *BridgeReconciler) Run(ctx context.Context) error {
	logger := klog.FromContext(ctx)
	logger.V(1).Info("Subscribing events", "type", "bridges.tibcoems.apimeister.com/v1")

	return watchLoop(ctx, r.api, bridgesResource, ownerSelector(*r.options.ResponsibleFor), newWatchLimiter(), r.dispatch)
}

func (r *BridgeReconciler) dispatch(ctx context.Context, event watch.Event) {
	logger := klog.FromContext(ctx)
	bridge := &v1.Bridge{}
	if err := fromUnstructured(event.Object, bridge); err != nil {
		logger.Error(err, "Failed to decode event object", "type", event.Type)

		return
	}

	switch event.Type {
	case watch.Added:
		r.handleAdded(ctx, bridge)
	case watch.Modified:
		r.handleModified(ctx, bridge)
	case watch.Deleted:
		r.handleDeleted(ctx, bridge)
	}
}

func (r *BridgeReconciler) handleAdded(ctx context.Context, bridge *v1.Bridge) {
	logger := klog.FromContext(ctx)
	name := bridge.GetName()
	if _, ok := r.caches.KnownBridge(name); ok {
		logger.V(4).Info("Bridge already known", "bridge", name)

		return
	}

	logger.V(1).Info("Creating bridge", "bridge", name)
	if err := r.admin.CreateBridge(ctx, broker.BridgeInfoFromSpec(bridge.Spec)); err != nil {
		r.fail(err, fmt.Sprintf("failed to create bridge %s", name))

		return
	}
	r.caches.SetKnownBridge(name, bridge)
}

// handleModified re-sends the create without a prior delete; the admin adapter
// treats this as idempotent. A modification changing source or target yields a
// second bridge on the server, matching the original declarative intent of the
// two specs.
func (r *BridgeReconciler) handleModified(ctx context.Context, bridge *v1.Bridge) {
	logger := klog.FromContext(ctx)
	name := bridge.GetName()
	logger.V(1).Info("Recreating bridge", "bridge", name)
	if err := r.admin.CreateBridge(ctx, broker.BridgeInfoFromSpec(bridge.Spec)); err != nil {
		r.fail(err, fmt.Sprintf("failed to recreate bridge %s", name))

		return
	}
	r.caches.SetKnownBridge(name, bridge)
}

func (r *BridgeReconciler) handleDeleted(ctx context.Context, bridge *v1.Bridge) {
	logger := klog.FromContext(ctx)
	name := bridge.GetName()
	if *r.options.DoNotDeleteObjects {
		logger.Info("Delete bridge not executed because of DO_NOT_DELETE_OBJECTS setting", "bridge", name)
	} else {
		logger.V(1).Info("Deleting bridge", "bridge", name)
		if err := r.admin.DeleteBridge(ctx, broker.BridgeInfoFromSpec(bridge.Spec)); err != nil {
			r.fail(err, fmt.Sprintf("failed to delete bridge %s", name))

			return
		}
	}
	r.caches.DeleteKnownBridge(name)
}
