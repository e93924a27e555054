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

// Package broker defines the administrative contract against the EMS server
// and the data types it trades in.
package broker

import (
	"context"

	v1 "github.com/apimeister/tibco-ems-operator/pkg/apis/tibcoems/v1"
)

// QueueInfo is the administrative view of a queue destination on the EMS
// server. List operations fill the statistics fields; create operations only
// read the configuration fields.
type QueueInfo struct {
	Name               string
	PendingMessages    int64
	ConsumerCount      int32
	OutgoingTotalCount int64
	MaxBytes           int64
	MaxMessages        int64
	ExpiryOverride     int64
	Prefetch           int32
	Global             bool
}

// TopicInfo is the administrative view of a topic destination on the EMS server.
type TopicInfo struct {
	Name            string
	PendingMessages int64
	SubscriberCount int32
	DurableCount    int32
	MaxBytes        int64
	MaxMessages     int64
	ExpiryOverride  int64
	Prefetch        int32
	Global          bool
}

// DestinationType tags one end of a bridge.
type DestinationType string

const (
	DestinationQueue DestinationType = "queue"
	DestinationTopic DestinationType = "topic"
)

// BridgeInfo describes a bridge between two destinations, with an optional
// message selector predicate.
type BridgeInfo struct {
	SourceType DestinationType
	SourceName string
	TargetType DestinationType
	TargetName string
	Selector   string
}

// destinationTypeOf maps the free-form type strings found in Bridge specs onto
// a destination tag. Matching is on the first character, case-insensitively;
// anything unrecognized falls back to the given default.
func destinationTypeOf(raw string, fallback DestinationType) DestinationType {
	if raw == "" {
		return fallback
	}
	switch raw[0] {
	case 'Q', 'q':
		return DestinationQueue
	case 'T', 't':
		return DestinationTopic
	}

	return fallback
}

// BridgeInfoFromSpec builds the administrative bridge description for a Bridge
// resource. Source defaults to a topic and target to a queue when the type
// strings match neither destination kind. Destination names are uppercased the
// same way unqualified queue and topic object names are.
func BridgeInfoFromSpec(spec v1.BridgeSpec) BridgeInfo {
	info := BridgeInfo{
		SourceType: destinationTypeOf(spec.SourceType, DestinationTopic),
		SourceName: toUpperASCII(spec.SourceName),
		TargetType: destinationTypeOf(spec.TargetType, DestinationQueue),
		TargetName: toUpperASCII(spec.TargetName),
	}
	if spec.Selector != nil {
		info.Selector = *spec.Selector
	}

	return info
}

// toUpperASCII uppercases ASCII letters only, leaving everything else untouched.
func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}

	return string(b)
}

// Admin is the administrative contract against the EMS server. A single
// implementation instance is shared process-wide; implementations serialize
// their underlying admin session internally.
//
// Create operations are idempotent from the caller's perspective: recreating
// an existing destination is allowed. Deleting a missing destination surfaces
// an error.
type Admin interface {
	ListAllQueues(ctx context.Context) ([]QueueInfo, error)
	ListAllTopics(ctx context.Context) ([]TopicInfo, error)

	CreateQueue(ctx context.Context, info QueueInfo) error
	DeleteQueue(ctx context.Context, name string) error

	CreateTopic(ctx context.Context, info TopicInfo) error
	DeleteTopic(ctx context.Context, name string) error

	CreateBridge(ctx context.Context, info BridgeInfo) error
	DeleteBridge(ctx context.Context, info BridgeInfo) error
}

// QueueInfoFromSpec derives the administrative create payload for a Queue
// resource.
func QueueInfoFromSpec(queue *v1.Queue) QueueInfo {
	info := QueueInfo{Name: queue.BrokerName()}
	if queue.Spec.Maxbytes != nil {
		info.MaxBytes = *queue.Spec.Maxbytes
	}
	if queue.Spec.Maxmsgs != nil {
		info.MaxMessages = *queue.Spec.Maxmsgs
	}
	if queue.Spec.Global != nil {
		info.Global = *queue.Spec.Global
	}
	if queue.Spec.Expiration != nil {
		info.ExpiryOverride = int64(*queue.Spec.Expiration)
	}
	if queue.Spec.Prefetch != nil {
		info.Prefetch = *queue.Spec.Prefetch
	}

	return info
}

// TopicInfoFromSpec derives the administrative create payload for a Topic
// resource.
func TopicInfoFromSpec(topic *v1.Topic) TopicInfo {
	info := TopicInfo{Name: topic.BrokerName()}
	if topic.Spec.Maxbytes != nil {
		info.MaxBytes = *topic.Spec.Maxbytes
	}
	if topic.Spec.Maxmsgs != nil {
		info.MaxMessages = *topic.Spec.Maxmsgs
	}
	if topic.Spec.Global != nil {
		info.Global = *topic.Spec.Global
	}
	if topic.Spec.Expiration != nil {
		info.ExpiryOverride = int64(*topic.Spec.Expiration)
	}
	if topic.Spec.Prefetch != nil {
		info.Prefetch = *topic.Spec.Prefetch
	}

	return info
}
