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

package emsadm

import (
	"strconv"
	"strings"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
)

// The show commands print fixed-width tables ending in a two-token size
// column ("1.2 Kb"), so rows are picked apart from the right:
//
//	Queue Name    SNFGXIBCT  Pre  Rcvrs  Msgs  Size
//	sample        ---------   5*      1    10  1.2 Kb
//
//	Topic Name    SNFGEIBCTM  Subs  Durs  Msgs  Size
//	sample        ----------     2     1    10  1.2 Kb
//
// Anything that does not parse as a destination row (banners, prompts,
// headers, the ">" wildcard aggregate) is skipped.

// parseQueues extracts queue statistics from `show queues` output.
func parseQueues(out string) []broker.QueueInfo {
	var result []broker.QueueInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] == ">" || strings.HasPrefix(line, " Queue Name") || fields[0] == "Queue" {
			continue
		}
		pending, err := parseCount(fields[len(fields)-3])
		if err != nil {
			continue
		}
		receivers, err := parseCount(fields[len(fields)-4])
		if err != nil {
			continue
		}
		result = append(result, broker.QueueInfo{
			Name:            fields[0],
			PendingMessages: pending,
			ConsumerCount:   int32(receivers),
		})
	}

	return result
}

// parseTopics extracts topic statistics from `show topics` output.
func parseTopics(out string) []broker.TopicInfo {
	var result []broker.TopicInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] == ">" || strings.HasPrefix(line, " Topic Name") || fields[0] == "Topic" {
			continue
		}
		pending, err := parseCount(fields[len(fields)-3])
		if err != nil {
			continue
		}
		durables, err := parseCount(fields[len(fields)-4])
		if err != nil {
			continue
		}
		subscribers, err := parseCount(fields[len(fields)-5])
		if err != nil {
			continue
		}
		result = append(result, broker.TopicInfo{
			Name:            fields[0],
			PendingMessages: pending,
			SubscriberCount: int32(subscribers),
			DurableCount:    int32(durables),
		})
	}

	return result
}

// parseCount parses a numeric table cell; a trailing '*' marker (inherited
// default) is ignored.
func parseCount(cell string) (int64, error) {
	return strconv.ParseInt(strings.TrimSuffix(cell, "*"), 10, 64)
}
