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
	"testing"

	"github.com/google/go-cmp/cmp"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestQueue_BrokerName(t *testing.T) {
	t.Parallel()
	specName := "FOO.BAR.IN"
	tests := []struct {
		name     string
		queue    *Queue
		expected string
	}{
		{
			name:     "spec name wins verbatim",
			queue:    &Queue{ObjectMeta: metav1.ObjectMeta{Name: "q1"}, Spec: QueueSpec{Name: &specName}},
			expected: "FOO.BAR.IN",
		},
		{
			name:     "object name is uppercased when spec name is absent",
			queue:    &Queue{ObjectMeta: metav1.ObjectMeta{Name: "q1"}},
			expected: "Q1",
		},
		{
			name:     "empty spec name falls back to the object name",
			queue:    &Queue{ObjectMeta: metav1.ObjectMeta{Name: "orders-in"}, Spec: QueueSpec{Name: new(string)}},
			expected: "ORDERS-IN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.queue.BrokerName(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestQueue_PropagateDefaults(t *testing.T) {
	t.Parallel()
	maxmsgs := int64(1000)
	queue := &Queue{
		ObjectMeta: metav1.ObjectMeta{Name: "q1"},
		Spec:       QueueSpec{Maxmsgs: &maxmsgs},
	}
	queue.PropagateDefaults()

	expected := QueueSpec{
		Maxmsgs:         &maxmsgs,
		Maxbytes:        new(int64),
		Expiration:      new(int32),
		Global:          new(bool),
		OverflowPolicy:  new(int32),
		Prefetch:        new(int32),
		RedeliveryDelay: new(int32),
		MaxRedelivery:   new(int32),
	}
	if diff := cmp.Diff(expected, queue.Spec); diff != "" {
		t.Errorf("unexpected spec after defaulting [-want +got]:\n%s", diff)
	}
	if diff := cmp.Diff(&QueueStatus{}, queue.Status); diff != "" {
		t.Errorf("unexpected status after defaulting [-want +got]:\n%s", diff)
	}
}

func TestTopic_PropagateDefaults(t *testing.T) {
	t.Parallel()
	topic := &Topic{ObjectMeta: metav1.ObjectMeta{Name: "t1"}}
	topic.PropagateDefaults()

	expected := TopicSpec{
		Maxmsgs:        new(int64),
		Maxbytes:       new(int64),
		Expiration:     new(int32),
		Global:         new(bool),
		OverflowPolicy: new(int32),
		Prefetch:       new(int32),
	}
	if diff := cmp.Diff(expected, topic.Spec); diff != "" {
		t.Errorf("unexpected spec after defaulting [-want +got]:\n%s", diff)
	}
	if diff := cmp.Diff(&TopicStatus{}, topic.Status); diff != "" {
		t.Errorf("unexpected status after defaulting [-want +got]:\n%s", diff)
	}
}
