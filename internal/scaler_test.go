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
	"testing"
	"time"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	"github.com/google/go-cmp/cmp"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/klog/v2"
	clocktesting "k8s.io/utils/clock/testing"
)

func testDeployment(name string, replicas int32, labels map[string]string) appsv1.Deployment {
	merged := map[string]string{scalingLabel: "true"}
	for k, v := range labels {
		merged[k] = v
	}

	return appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default", Labels: merged},
		Spec:       appsv1.DeploymentSpec{Replicas: &replicas},
	}
}

func newTestScaler(api *fakeKubeAPI, caches *Caches) (*Scaler, *clocktesting.FakeClock) {
	clk := clocktesting.NewFakeClock(time.Unix(1700000000, 0))

	return NewScaler(api, caches, clk, ""), clk
}

func TestScaler_ScaleUpAndCooldown(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	caches := NewCaches()
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1"})
	api.deployments = []appsv1.Deployment{testDeployment("worker", 0, map[string]string{
		queueLabelPrefix: "Q1",
		thresholdLabel:   "100",
		maxScaleLabel:    "5",
	})}
	s, clk := newTestScaler(api, caches)
	s.discover(ctx)

	// Backlog appears: one replica comes up.
	s.Feed(ctx, "Q1", 1, 0)
	if diff := cmp.Diff([]scalePatch{{name: "worker", replicas: 1}}, api.recordedPatches()); diff != "" {
		t.Fatalf("unexpected patches after first trigger [-want +got]:\n%s", diff)
	}

	// Backlog grows past the threshold: linear scale-out, capped at maxScale.
	s.Feed(ctx, "Q1", 450, 0)
	patches := api.recordedPatches()
	if len(patches) != 2 || patches[1].replicas != 4 {
		t.Fatalf("expected scale-out to 4 replicas, got %v", patches)
	}

	// The queue drains immediately: still inside the cooldown window, no
	// scale-down fires.
	s.Feed(ctx, "Q1", 0, 0)
	if got := len(api.recordedPatches()); got != 2 {
		t.Fatalf("expected no patch during cooldown, got %d patches", got)
	}

	// After the cooldown elapses with no further activity, the deployment is
	// parked at zero.
	clk.Step(61 * time.Second)
	s.Feed(ctx, "Q1", 0, 0)
	patches = api.recordedPatches()
	if len(patches) != 3 || patches[2].replicas != 0 {
		t.Fatalf("expected scale-down to 0 replicas, got %v", patches)
	}

	// Once Inactive, further empty ticks are no-ops.
	s.Feed(ctx, "Q1", 0, 0)
	if got := len(api.recordedPatches()); got != 3 {
		t.Errorf("expected no patch while inactive, got %d patches", got)
	}
}

func TestScaler_ScaleOutCeiling(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	caches := NewCaches()
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1"})
	api.deployments = []appsv1.Deployment{testDeployment("worker", 1, map[string]string{
		queueLabelPrefix: "Q1",
		maxScaleLabel:    "5",
	})}
	s, _ := newTestScaler(api, caches)
	s.discover(ctx)

	// Far beyond any threshold multiple, the ceiling holds.
	s.Feed(ctx, "Q1", 1000000, 0)
	patches := api.recordedPatches()
	if len(patches) != 1 || patches[0].replicas != 5 {
		t.Fatalf("expected replicas capped at 5, got %v", patches)
	}
}

func TestScaler_DrainDetectionDefersScaleDown(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	caches := NewCaches()
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1"})
	api.deployments = []appsv1.Deployment{testDeployment("worker", 0, map[string]string{queueLabelPrefix: "Q1"})}
	s, clk := newTestScaler(api, caches)
	s.discover(ctx)

	s.Feed(ctx, "Q1", 5, 100)
	clk.Step(2 * cooldownPeriod)

	// The queue is empty but the outgoing counter moved: the consumer is
	// still draining, so the deployment stays up regardless of cooldown.
	s.Feed(ctx, "Q1", 0, 150)
	if got := len(api.recordedPatches()); got != 1 {
		t.Fatalf("expected no scale-down while draining, got %d patches", got)
	}

	// The drain refreshed the activity timestamp, so the next empty tick is
	// back inside the cooldown window.
	s.Feed(ctx, "Q1", 0, 150)
	if got := len(api.recordedPatches()); got != 1 {
		t.Fatalf("expected no scale-down inside refreshed cooldown, got %d patches", got)
	}

	clk.Step(cooldownPeriod + time.Second)
	s.Feed(ctx, "Q1", 0, 150)
	patches := api.recordedPatches()
	if len(patches) != 2 || patches[1].replicas != 0 {
		t.Fatalf("expected scale-down after the drain settled, got %v", patches)
	}
}

func TestScaler_DiscoverSkipsUnknownQueues(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	caches := NewCaches()
	// The trigger queue is not visible on the server.
	api.deployments = []appsv1.Deployment{testDeployment("worker", 0, map[string]string{queueLabelPrefix: "GHOST"})}
	s, _ := newTestScaler(api, caches)
	s.discover(ctx)

	s.Feed(ctx, "GHOST", 100, 0)
	if got := len(api.recordedPatches()); got != 0 {
		t.Errorf("expected no patches for an unregistered deployment, got %d", got)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) != 0 {
		t.Errorf("expected no registered states, got %d", len(s.states))
	}
}

func TestScaler_DiscoverReadsTriggersFromAnnotations(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	caches := NewCaches()
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1"})
	deployment := testDeployment("worker", 0, nil)
	deployment.Annotations = map[string]string{
		queueLabelPrefix + "-orders": "Q1",
		thresholdLabel:               "50",
	}
	api.deployments = []appsv1.Deployment{deployment}
	s, _ := newTestScaler(api, caches)
	s.discover(ctx)

	// threshold=50 from the annotation: 120 pending yields 2 replicas.
	s.Feed(ctx, "Q1", 1, 0)
	s.Feed(ctx, "Q1", 120, 0)
	patches := api.recordedPatches()
	if len(patches) != 2 || patches[1].replicas != 2 {
		t.Fatalf("expected annotation-driven threshold to yield 2 replicas, got %v", patches)
	}
}

func TestScaler_DiscoverReconcilesExternalChanges(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	caches := NewCaches()
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1"})
	api.deployments = []appsv1.Deployment{testDeployment("worker", 1, map[string]string{queueLabelPrefix: "Q1"})}
	s, _ := newTestScaler(api, caches)
	s.discover(ctx)

	s.mu.Lock()
	phase := s.states["worker"].phase
	s.mu.Unlock()
	if phase != phaseActive {
		t.Fatalf("expected initial phase Active for a running deployment, got %s", phase)
	}

	// Someone scaled the deployment to zero outside the operator.
	api.mu.Lock()
	api.deployments = []appsv1.Deployment{testDeployment("worker", 0, map[string]string{queueLabelPrefix: "Q1"})}
	api.mu.Unlock()
	s.discover(ctx)

	s.mu.Lock()
	phase = s.states["worker"].phase
	s.mu.Unlock()
	if phase != phaseInactive {
		t.Errorf("expected phase Inactive after external scale-down, got %s", phase)
	}
}

func TestScaler_ScaleFailurePreservesState(t *testing.T) {
	t.Parallel()
	ctx := klog.NewContext(context.Background(), klog.Background())
	api := newFakeKubeAPI()
	api.patchErr = errForced
	caches := NewCaches()
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1"})
	api.deployments = []appsv1.Deployment{testDeployment("worker", 0, map[string]string{queueLabelPrefix: "Q1"})}
	s, _ := newTestScaler(api, caches)
	s.discover(ctx)

	s.Feed(ctx, "Q1", 10, 0)
	s.mu.Lock()
	phase := s.states["worker"].phase
	s.mu.Unlock()
	if phase != phaseInactive {
		t.Fatalf("expected phase to remain Inactive after a failed scale-up, got %s", phase)
	}

	// Once the API recovers, the next trigger retries.
	api.mu.Lock()
	api.patchErr = nil
	api.mu.Unlock()
	s.Feed(ctx, "Q1", 10, 0)
	patches := api.recordedPatches()
	if len(patches) != 1 || patches[0].replicas != 1 {
		t.Errorf("expected a retried scale-up to 1 replica, got %v", patches)
	}
}
