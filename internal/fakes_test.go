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
	"sync"
	"testing"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/klog/v2"
)

// testOptions returns Options with every field set, sidestepping flag parsing.
func testOptions() *Options {
	username := "admin"
	password := "admin"
	serverURL := "tcp://ems:7222"
	namespace := "default"
	responsibleFor := ""
	refresh := 10000
	timeout := 0
	boolFalse1, boolFalse2, boolFalse3 := false, false, false
	enable := false

	return &Options{
		AdminCommandTimeoutMS: &timeout,
		DoNotDeleteObjects:    &boolFalse1,
		EnableScaling:         &enable,
		KubernetesNamespace:   &namespace,
		Password:              &password,
		ReadOnly:              &boolFalse2,
		ResponsibleFor:        &responsibleFor,
		ServerURL:             &serverURL,
		StatusRefreshInMS:     &refresh,
		Username:              &username,
		Version:               &boolFalse3,
		logger:                klog.Background(),
	}
}

// failRecorder records fatal-path invocations instead of exiting.
type failRecorder struct {
	mu       sync.Mutex
	failures []string
}

func (f *failRecorder) handle(err error, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, fmt.Sprintf("%s: %v", msg, err))
}

func (f *failRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.failures)
}

// scalePatch records one PatchScale invocation.
type scalePatch struct {
	name     string
	replicas int32
}

// fakeKubeAPI implements KubeAPI in memory.
type fakeKubeAPI struct {
	mu sync.Mutex

	// watchers returns one watch stream per establish call; watchRVs records
	// the cursor of each call.
	watchers []watch.Interface
	watchRVs []string

	// objects is served by Get, keyed by object name.
	objects map[string]*unstructured.Unstructured

	// replaced records every ReplaceStatus body.
	replaced []*unstructured.Unstructured

	deployments []appsv1.Deployment

	patches  []scalePatch
	patchErr error
}

var _ KubeAPI = &fakeKubeAPI{}

func newFakeKubeAPI() *fakeKubeAPI {
	return &fakeKubeAPI{objects: make(map[string]*unstructured.Unstructured)}
}

func (f *fakeKubeAPI) Watch(_ context.Context, _ schema.GroupVersionResource, _, sinceRV string) (watch.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchRVs = append(f.watchRVs, sinceRV)
	if len(f.watchers) == 0 {
		return nil, fmt.Errorf("no watcher configured")
	}
	next := f.watchers[0]
	f.watchers = f.watchers[1:]

	return next, nil
}

func (f *fakeKubeAPI) Get(_ context.Context, _ schema.GroupVersionResource, name string) (*unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[name]
	if !ok {
		return nil, fmt.Errorf("object %q not found", name)
	}

	return obj.DeepCopy(), nil
}

func (f *fakeKubeAPI) ReplaceStatus(_ context.Context, _ schema.GroupVersionResource, obj *unstructured.Unstructured) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = append(f.replaced, obj.DeepCopy())

	return nil
}

func (f *fakeKubeAPI) ListDeployments(_ context.Context, _ string) ([]appsv1.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]appsv1.Deployment, len(f.deployments))
	copy(out, f.deployments)

	return out, nil
}

func (f *fakeKubeAPI) PatchScale(_ context.Context, name string, replicas int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patches = append(f.patches, scalePatch{name: name, replicas: replicas})

	return nil
}

func (f *fakeKubeAPI) recordedPatches() []scalePatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]scalePatch, len(f.patches))
	copy(out, f.patches)

	return out
}

func (f *fakeKubeAPI) recordedReplacements() []*unstructured.Unstructured {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*unstructured.Unstructured, len(f.replaced))
	copy(out, f.replaced)

	return out
}

// fakeAdmin implements broker.Admin in memory.
type fakeAdmin struct {
	mu sync.Mutex

	queues []broker.QueueInfo
	topics []broker.TopicInfo

	createdQueues  []broker.QueueInfo
	deletedQueues  []string
	createdTopics  []broker.TopicInfo
	deletedTopics  []string
	createdBridges []broker.BridgeInfo
	deletedBridges []broker.BridgeInfo

	createErr error
	deleteErr error
	listErr   error
}

var _ broker.Admin = &fakeAdmin{}

func (a *fakeAdmin) ListAllQueues(context.Context) ([]broker.QueueInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]broker.QueueInfo, len(a.queues))
	copy(out, a.queues)

	return out, nil
}

func (a *fakeAdmin) ListAllTopics(context.Context) ([]broker.TopicInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]broker.TopicInfo, len(a.topics))
	copy(out, a.topics)

	return out, nil
}

func (a *fakeAdmin) CreateQueue(_ context.Context, info broker.QueueInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return a.createErr
	}
	a.createdQueues = append(a.createdQueues, info)

	return nil
}

func (a *fakeAdmin) DeleteQueue(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deletedQueues = append(a.deletedQueues, name)

	return nil
}

func (a *fakeAdmin) CreateTopic(_ context.Context, info broker.TopicInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return a.createErr
	}
	a.createdTopics = append(a.createdTopics, info)

	return nil
}

func (a *fakeAdmin) DeleteTopic(_ context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deletedTopics = append(a.deletedTopics, name)

	return nil
}

func (a *fakeAdmin) CreateBridge(_ context.Context, info broker.BridgeInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return a.createErr
	}
	a.createdBridges = append(a.createdBridges, info)

	return nil
}

func (a *fakeAdmin) DeleteBridge(_ context.Context, info broker.BridgeInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deletedBridges = append(a.deletedBridges, info)

	return nil
}

// errForced stands in for any collaborator failure.
var errForced = fmt.Errorf("forced failure")

// unstructuredNestedMap reads a nested map field from unstructured content.
func unstructuredNestedMap(content map[string]interface{}, fields ...string) (map[string]interface{}, bool, error) {
	return unstructured.NestedMap(content, fields...)
}

// asUnstructured converts a typed object into the shape watch streams deliver.
func asUnstructured(t *testing.T, obj interface{}) *unstructured.Unstructured {
	t.Helper()
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		t.Fatalf("failed to convert object: %v", err)
	}

	return &unstructured.Unstructured{Object: content}
}
