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
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
)

func newTestServer(t *testing.T) (*httptest.Server, *Caches) {
	t.Helper()
	caches := NewCaches()
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewStatsCollector(caches))
	ctx := klog.NewContext(context.Background(), klog.Background())
	server := httptest.NewServer(NewServer("0.0.0.0:8080", caches, registry).Build(ctx).Handler)
	t.Cleanup(server.Close)

	return server, caches
}

func get(t *testing.T, server *httptest.Server, path string) (int, string) {
	t.Helper()
	response, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("error reading body: %v", err)
	}

	return response.StatusCode, string(body)
}

func TestServer_Banner(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t)
	code, body := get(t, server, "/")
	if code != http.StatusOK || body != "tibco-ems-operator" {
		t.Errorf("unexpected banner response: %d %q", code, body)
	}
}

func TestServer_UnknownPathIs404(t *testing.T) {
	t.Parallel()
	server, _ := newTestServer(t)
	code, _ := get(t, server, "/nope")
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestServer_QueueStats(t *testing.T) {
	t.Parallel()
	server, caches := newTestServer(t)
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1", PendingMessages: 3, ConsumerCount: 1})
	caches.SetQueueStats(broker.QueueInfo{Name: "Q2", PendingMessages: 5, ConsumerCount: 2})

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "single queue",
			path:     "/queue/Q1",
			expected: `{"name":"Q1","pendingMessages":3,"consumerCount":1}`,
		},
		{
			name:     "aggregate across the union",
			path:     "/queue/Q1%7CQ2",
			expected: `{"name":"mixed","pendingMessages":8,"consumerCount":3}`,
		},
		{
			name:     "unknown destination yields a zero entry",
			path:     "/queue/GHOST",
			expected: `{"name":"GHOST","pendingMessages":0,"consumerCount":0}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, body := get(t, server, tt.path)
			if code != http.StatusOK {
				t.Fatalf("expected 200, got %d", code)
			}
			if diff := cmp.Diff(tt.expected+"\n", body); diff != "" {
				t.Errorf("unexpected body [-want +got]:\n%s", diff)
			}
		})
	}
}

func TestServer_QueueAggregationEncodingsMatch(t *testing.T) {
	t.Parallel()
	_, caches := newTestServer(t)
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1", PendingMessages: 3, ConsumerCount: 1})
	caches.SetQueueStats(broker.QueueInfo{Name: "Q2", PendingMessages: 5, ConsumerCount: 2})
	registry := prometheus.NewRegistry()
	ctx := klog.NewContext(context.Background(), klog.Background())
	handler := NewServer("0.0.0.0:8080", caches, registry).Build(ctx).Handler

	// The raw and percent-encoded separators address the same union and the
	// responses are byte-identical.
	encoded := httptest.NewRecorder()
	handler.ServeHTTP(encoded, httptest.NewRequest(http.MethodGet, "/queue/Q1%7CQ2", nil))
	raw := httptest.NewRecorder()
	handler.ServeHTTP(raw, httptest.NewRequest(http.MethodGet, "/queue/Q1|Q2", nil))

	if encoded.Code != http.StatusOK || raw.Code != http.StatusOK {
		t.Fatalf("unexpected status codes: %d, %d", encoded.Code, raw.Code)
	}
	if diff := cmp.Diff(encoded.Body.String(), raw.Body.String()); diff != "" {
		t.Errorf("responses differ between encodings [-encoded +raw]:\n%s", diff)
	}
}

func TestServer_TopicStats(t *testing.T) {
	t.Parallel()
	server, caches := newTestServer(t)
	caches.SetTopicStats(broker.TopicInfo{Name: "T1", PendingMessages: 4, SubscriberCount: 2, DurableCount: 1})

	code, body := get(t, server, "/topic/T1")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	expected := `{"name":"T1","pendingMessages":4,"subscriberCount":2,"durableCount":1}`
	if diff := cmp.Diff(expected+"\n", body); diff != "" {
		t.Errorf("unexpected body [-want +got]:\n%s", diff)
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()
	server, caches := newTestServer(t)
	caches.SetQueueStats(broker.QueueInfo{Name: "Q1", PendingMessages: 3, ConsumerCount: 1})
	caches.SetTopicStats(broker.TopicInfo{Name: "T1", PendingMessages: 4, SubscriberCount: 2, DurableCount: 1})

	code, body := get(t, server, "/metrics")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	expectedLines := []string{
		`Q:pendingMessages{instance="EMS-ESB",queue="Q1"} 3`,
		`Q:consumers{instance="EMS-ESB",queue="Q1"} 1`,
		`T:pendingMessages{instance="EMS-ESB",topic="T1"} 4`,
		`T:subscribers{instance="EMS-ESB",topic="T1"} 2`,
		`T:durables{instance="EMS-ESB",topic="T1"} 1`,
	}
	for _, line := range expectedLines {
		if !strings.Contains(body, line) {
			t.Errorf("expected exposition to contain %q, got:\n%s", line, body)
		}
	}
}
