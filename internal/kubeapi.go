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

	v1 "github.com/apimeister/tibco-ems-operator/pkg/apis/tibcoems/v1"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// Resources of the tibcoems.apimeister.com/v1 group, as served by the CRDs.
var (
	queuesResource  = v1.SchemeGroupVersion.WithResource("queues")
	topicsResource  = v1.SchemeGroupVersion.WithResource("topics")
	bridgesResource = v1.SchemeGroupVersion.WithResource("bridges")
)

// KubeAPI is the Kubernetes-facing contract of the operator: custom-resource
// watches and status writes, plus deployment listing and scaling. All
// operations are scoped to the operator's namespace.
type KubeAPI interface {
	// Watch opens a watch on the given custom resource, resuming at sinceRV.
	Watch(ctx context.Context, gvr schema.GroupVersionResource, labelSelector, sinceRV string) (watch.Interface, error)

	// Get fetches the named custom resource.
	Get(ctx context.Context, gvr schema.GroupVersionResource, name string) (*unstructured.Unstructured, error)

	// ReplaceStatus replaces the status subresource of the given object.
	ReplaceStatus(ctx context.Context, gvr schema.GroupVersionResource, obj *unstructured.Unstructured) error

	// ListDeployments lists deployments matching the label selector.
	ListDeployments(ctx context.Context, labelSelector string) ([]appsv1.Deployment, error)

	// PatchScale merge-patches spec.replicas of the named deployment.
	PatchScale(ctx context.Context, name string, replicas int32) error
}

// kubeAPI implements KubeAPI on top of the dynamic clientset (custom
// resources) and the typed clientset (deployments).
type kubeAPI struct {
	dynamicClientset dynamic.Interface
	kubeClientset    kubernetes.Interface
	namespace        string
}

// Ensure kubeAPI implements KubeAPI.
var _ KubeAPI = &kubeAPI{}

// NewKubeAPI returns a KubeAPI operating in the given namespace.
func NewKubeAPI(dynamicClientset dynamic.Interface, kubeClientset kubernetes.Interface, namespace string) KubeAPI {
	return &kubeAPI{
		dynamicClientset: dynamicClientset,
		kubeClientset:    kubeClientset,
		namespace:        namespace,
	}
}

func (k *kubeAPI) Watch(ctx context.Context, gvr schema.GroupVersionResource, labelSelector, sinceRV string) (watch.Interface, error) {
	return k.dynamicClientset.Resource(gvr).Namespace(k.namespace).Watch(ctx, metav1.ListOptions{
		LabelSelector:   labelSelector,
		ResourceVersion: sinceRV,
	})
}

func (k *kubeAPI) Get(ctx context.Context, gvr schema.GroupVersionResource, name string) (*unstructured.Unstructured, error) {
	return k.dynamicClientset.Resource(gvr).Namespace(k.namespace).Get(ctx, name, metav1.GetOptions{})
}

func (k *kubeAPI) ReplaceStatus(ctx context.Context, gvr schema.GroupVersionResource, obj *unstructured.Unstructured) error {
	_, err := k.dynamicClientset.Resource(gvr).Namespace(k.namespace).UpdateStatus(ctx, obj, metav1.UpdateOptions{})

	return err
}

func (k *kubeAPI) ListDeployments(ctx context.Context, labelSelector string) ([]appsv1.Deployment, error) {
	list, err := k.kubeClientset.AppsV1().Deployments(k.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return nil, err
	}

	return list.Items, nil
}

func (k *kubeAPI) PatchScale(ctx context.Context, name string, replicas int32) error {
	patch := fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas)
	_, err := k.kubeClientset.AppsV1().Deployments(k.namespace).
		Patch(ctx, name, types.MergePatchType, []byte(patch), metav1.PatchOptions{})

	return err
}

// fromUnstructured converts a watch-delivered object into its typed representation.
func fromUnstructured(obj runtime.Object, into interface{}) error {
	u, ok := obj.(*unstructured.Unstructured)
	if !ok {
		return fmt.Errorf("expected *unstructured.Unstructured but got %T", obj)
	}

	return runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, into)
}

// toUnstructured converts a typed custom resource for a dynamic-client write.
func toUnstructured(obj interface{}) (*unstructured.Unstructured, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, err
	}

	return &unstructured.Unstructured{Object: content}, nil
}
