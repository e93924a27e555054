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
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/apimeister/tibco-ems-operator/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

// Server exposes the operator's HTTP surface: the banner, per-destination
// statistics lookups, and the Prometheus exposition endpoint.
type Server struct {
	promHTTPLogger
	// addr is the http.Server address to listen on.
	addr     string
	caches   *Caches
	registry *prometheus.Registry
}

// NewServer returns a new Server.
func NewServer(addr string, caches *Caches, registry *prometheus.Registry) *Server {
	return &Server{
		promHTTPLogger: promHTTPLogger{"stats"},
		addr:           addr,
		caches:         caches,
		registry:       registry,
	}
}

// queueStatsResponse is the JSON body of a queue statistics lookup. Field
// order is fixed so aggregated responses are byte-stable.
type queueStatsResponse struct {
	Name            string `json:"name"`
	PendingMessages int64  `json:"pendingMessages"`
	ConsumerCount   int32  `json:"consumerCount"`
}

// topicStatsResponse is the JSON body of a topic statistics lookup.
type topicStatsResponse struct {
	Name            string `json:"name"`
	PendingMessages int64  `json:"pendingMessages"`
	SubscriberCount int32  `json:"subscriberCount"`
	DurableCount    int32  `json:"durableCount"`
}

// Build sets up the Server.
func (s *Server) Build(ctx context.Context) *http.Server {
	logger := klog.FromContext(ctx)
	router := chi.NewRouter()

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(version.OperatorName.String())); err != nil {
			logger.Error(err, "error writing banner response")
		}
	})
	router.Get("/queue/{name}", s.handleQueue(logger))
	router.Get("/topic/{name}", s.handleTopic(logger))
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog:      s.promHTTPLogger,
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      s.registry,
	}))

	return &http.Server{
		ErrorLog:          log.New(os.Stdout, s.source, log.LstdFlags|log.Lshortfile),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		Addr:              s.addr,
	}
}

// handleQueue serves one queue's statistics, or the aggregate across a
// |-separated union of queues. Unknown destinations yield zero-valued entries.
func (s *Server) handleQueue(logger klog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := destinationNames(chi.URLParam(r, "name"))
		response := queueStatsResponse{Name: "mixed"}
		if len(names) == 1 {
			response.Name = names[0]
		}
		for _, name := range names {
			info, _ := s.caches.QueueStats(name)
			response.PendingMessages += info.PendingMessages
			response.ConsumerCount += info.ConsumerCount
		}
		writeJSON(w, logger, response)
	}
}

// handleTopic serves one topic's statistics, or the aggregate across a
// |-separated union of topics.
func (s *Server) handleTopic(logger klog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := destinationNames(chi.URLParam(r, "name"))
		response := topicStatsResponse{Name: "mixed"}
		if len(names) == 1 {
			response.Name = names[0]
		}
		for _, name := range names {
			info, _ := s.caches.TopicStats(name)
			response.PendingMessages += info.PendingMessages
			response.SubscriberCount += info.SubscriberCount
			response.DurableCount += info.DurableCount
		}
		writeJSON(w, logger, response)
	}
}

// destinationNames splits a path segment into the union of destinations it
// addresses. The separator may arrive raw or percent-encoded.
func destinationNames(segment string) []string {
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}

	return strings.Split(segment, "|")
}

func writeJSON(w http.ResponseWriter, logger klog.Logger, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(err, "error writing response")
	}
}

// promHTTPLogger implements promhttp.Logger.
type promHTTPLogger struct {
	// source is the originating server for the log.
	source string
}

// Println logs on all errors received by promhttp.Logger.
func (l promHTTPLogger) Println(v ...interface{}) {
	klog.ErrorS(fmt.Errorf("%s", v), "err", "source", l.source)
}
