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

package v1

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true
// +kubebuilder:resource:singular=queue,scope=Namespaced
// +kubebuilder:subresource:status

// Queue is a declarative representation of a queue destination on the EMS server.
type Queue struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              QueueSpec    `json:"spec"`
	Status            *QueueStatus `json:"status,omitempty"`
}

// QueueSpec is the spec for a Queue resource. All scalar properties are
// optional; absent values are propagated to their zero equivalents once the
// destination has been created on the server.
type QueueSpec struct {
	// Name overrides the destination name on the EMS server. When absent, the
	// uppercased object name is used instead.
	Name            *string `json:"name,omitempty"`
	Expiration      *int32  `json:"expiration,omitempty"`
	Global          *bool   `json:"global,omitempty"`
	Maxbytes        *int64  `json:"maxbytes,omitempty"`
	Maxmsgs         *int64  `json:"maxmsgs,omitempty"`
	MaxRedelivery   *int32  `json:"maxRedelivery,omitempty"`
	OverflowPolicy  *int32  `json:"overflowPolicy,omitempty"`
	Prefetch        *int32  `json:"prefetch,omitempty"`
	RedeliveryDelay *int32  `json:"redeliveryDelay,omitempty"`
}

// QueueStatus is the server-observed state of a Queue resource.
type QueueStatus struct {
	PendingMessages int64 `json:"pendingMessages"`
	ConsumerCount   int32 `json:"consumerCount"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true

// QueueList is a list of Queue resources.
type QueueList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []Queue `json:"items"`
}

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true
// +kubebuilder:resource:singular=topic,scope=Namespaced
// +kubebuilder:subresource:status

// Topic is a declarative representation of a topic destination on the EMS server.
type Topic struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              TopicSpec    `json:"spec"`
	Status            *TopicStatus `json:"status,omitempty"`
}

// TopicSpec is the spec for a Topic resource.
type TopicSpec struct {
	// Name overrides the destination name on the EMS server. When absent, the
	// uppercased object name is used instead.
	Name           *string `json:"name,omitempty"`
	Expiration     *int32  `json:"expiration,omitempty"`
	Global         *bool   `json:"global,omitempty"`
	Maxbytes       *int64  `json:"maxbytes,omitempty"`
	Maxmsgs        *int64  `json:"maxmsgs,omitempty"`
	OverflowPolicy *int32  `json:"overflowPolicy,omitempty"`
	Prefetch       *int32  `json:"prefetch,omitempty"`
}

// TopicStatus is the server-observed state of a Topic resource.
type TopicStatus struct {
	PendingMessages int64 `json:"pendingMessages"`
	Subscribers     int32 `json:"subscribers"`
	Durables        int32 `json:"durables"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true

// TopicList is a list of Topic resources.
type TopicList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []Topic `json:"items"`
}

// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true
// +kubebuilder:resource:singular=bridge,scope=Namespaced

// Bridge is a declarative representation of a bridge between two destinations
// on the EMS server.
type Bridge struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              BridgeSpec `json:"spec"`
}

// BridgeSpec is the spec for a Bridge resource. Source and target types are
// matched on their first character ('Q' or 'q' selects a queue, 'T' or 't' a
// topic).
type BridgeSpec struct {
	SourceType string  `json:"source_type"`
	SourceName string  `json:"source_name"`
	TargetType string  `json:"target_type"`
	TargetName string  `json:"target_name"`
	Selector   *string `json:"selector,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
// +kubebuilder:object:root=true

// BridgeList is a list of Bridge resources.
type BridgeList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []Bridge `json:"items"`
}

// BrokerName returns the destination name the Queue maps to on the EMS
// server: spec.name verbatim when present, the uppercased object name
// otherwise. The object name stays the Kubernetes identity either way.
func (q *Queue) BrokerName() string {
	if q.Spec.Name != nil && *q.Spec.Name != "" {
		return *q.Spec.Name
	}

	return strings.ToUpper(q.GetName())
}

// BrokerName returns the destination name the Topic maps to on the EMS server.
func (t *Topic) BrokerName() string {
	if t.Spec.Name != nil && *t.Spec.Name != "" {
		return *t.Spec.Name
	}

	return strings.ToUpper(t.GetName())
}

// PropagateDefaults fills all unset optional scalars with their zero
// equivalents and attaches a zero-valued status. The resulting object is the
// snapshot the status pollers diff against.
func (q *Queue) PropagateDefaults() {
	if q.Spec.Maxmsgs == nil {
		q.Spec.Maxmsgs = new(int64)
	}
	if q.Spec.Maxbytes == nil {
		q.Spec.Maxbytes = new(int64)
	}
	if q.Spec.Expiration == nil {
		q.Spec.Expiration = new(int32)
	}
	if q.Spec.Global == nil {
		q.Spec.Global = new(bool)
	}
	if q.Spec.OverflowPolicy == nil {
		q.Spec.OverflowPolicy = new(int32)
	}
	if q.Spec.Prefetch == nil {
		q.Spec.Prefetch = new(int32)
	}
	if q.Spec.RedeliveryDelay == nil {
		q.Spec.RedeliveryDelay = new(int32)
	}
	if q.Spec.MaxRedelivery == nil {
		q.Spec.MaxRedelivery = new(int32)
	}
	if q.Status == nil {
		q.Status = &QueueStatus{}
	}
}

// PropagateDefaults fills all unset optional scalars with their zero
// equivalents and attaches a zero-valued status.
func (t *Topic) PropagateDefaults() {
	if t.Spec.Maxmsgs == nil {
		t.Spec.Maxmsgs = new(int64)
	}
	if t.Spec.Maxbytes == nil {
		t.Spec.Maxbytes = new(int64)
	}
	if t.Spec.Expiration == nil {
		t.Spec.Expiration = new(int32)
	}
	if t.Spec.Global == nil {
		t.Spec.Global = new(bool)
	}
	if t.Spec.OverflowPolicy == nil {
		t.Spec.OverflowPolicy = new(int32)
	}
	if t.Spec.Prefetch == nil {
		t.Spec.Prefetch = new(int32)
	}
	if t.Status == nil {
		t.Status = &TopicStatus{}
	}
}
