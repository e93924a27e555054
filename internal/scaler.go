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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

const (
	// scalingLabel opts a deployment into queue-driven scaling.
	scalingLabel = "tibcoems.apimeister.com/scaling"

	// queueLabelPrefix marks labels and annotations naming trigger queues.
	// Values are broker-side destination names.
	queueLabelPrefix = "tibcoems.apimeister.com/queue"

	// thresholdLabel sets the pending-message count one replica is expected
	// to handle.
	thresholdLabel = "tibcoems.apimeister.com/threshold"

	// maxScaleLabel caps the replica count on scale-out.
	maxScaleLabel = "tibcoems.apimeister.com/maxScale"

	defaultThreshold = 100
	defaultMaxScale  = 10

	// discoveryInterval is the period of the deployment discovery loop.
	discoveryInterval = 12 * time.Second

	// cooldownPeriod is the minimum quiet time after the last observed
	// activity before a deployment is scaled to zero.
	cooldownPeriod = 60 * time.Second
)

// scalePhase is the per-deployment state machine phase.
type scalePhase int

const (
	phaseInactive scalePhase = iota
	phaseActive
)

func (p scalePhase) String() string {
	return []string{"Inactive", "Active"}[p]
}

// Trigger is one queue observation fed into the state machine.
type Trigger struct {
	DestinationName    string
	OutgoingTotalCount int64
	PendingMessages    int64
}

// deploymentState carries the state machine variables for one deployment.
type deploymentState struct {
	phase scalePhase

	// activityTs is the last time the deployment showed activity; scale-down
	// decisions measure the cooldown against it.
	activityTs time.Time

	// triggers records the last-seen outgoing total per monitored
	// destination, used to detect a consumer still draining.
	triggers map[string]int64

	replicas  int32
	threshold int64
	maxScale  int32
}

// Scaler discovers scalable deployments and drives their replica counts from
// queue statistics. Deployments opt in via the scaling label, name their
// trigger queues through queue labels or annotations, and may tune threshold
// and maxScale.
type Scaler struct {
	api            KubeAPI
	caches         *Caches
	clock          clock.Clock
	responsibleFor string

	mu sync.Mutex
	// states is keyed by deployment name, targets by broker-side queue name.
	states  map[string]*deploymentState
	targets map[string][]string
}

// NewScaler returns a new Scaler.
func NewScaler(api KubeAPI, caches *Caches, clk clock.Clock, responsibleFor string) *Scaler {
	return &Scaler{
		api:            api,
		caches:         caches,
		clock:          clk,
		responsibleFor: responsibleFor,
		states:         make(map[string]*deploymentState),
		targets:        make(map[string][]string),
	}
}

// Run discovers deployments until ctx is done.
func (s *Scaler) Run(ctx context.Context) error {
	wait.UntilWithContext(ctx, s.discover, discoveryInterval)

	return ctx.Err()
}

// discover lists opted-in deployments, reconciles externally-driven replica
// changes on known ones, and registers new ones.
func (s *Scaler) discover(ctx context.Context) {
	logger := klog.FromContext(ctx)
	selector := scalingLabel + "=true," + ownerSelector(s.responsibleFor)
	deployments, err := s.api.ListDeployments(ctx, selector)
	if err != nil {
		logger.Error(err, "Error listing scalable deployments")

		return
	}

	// One stats snapshot per discovery pass; trigger queues must already be
	// visible on the server to be registered.
	knownQueues := s.caches.QueueStatsSnapshot()

	for i := range deployments {
		deployment := &deployments[i]
		name := deployment.GetName()
		replicas := int32(1)
		if deployment.Spec.Replicas != nil {
			replicas = *deployment.Spec.Replicas
		}

		s.mu.Lock()
		state, known := s.states[name]
		if known {
			// Reconcile replica changes applied outside the operator.
			if state.phase == phaseActive && replicas == 0 {
				logger.V(1).Info("Deployment scaled down externally", "deployment", name)
				state.phase = phaseInactive
				state.replicas = 0
			} else if state.phase == phaseInactive && replicas == 1 {
				logger.V(1).Info("Deployment scaled up externally", "deployment", name)
				state.phase = phaseActive
				state.replicas = 1
			}
			s.mu.Unlock()

			continue
		}
		s.mu.Unlock()

		logger.V(1).Info("Found deployment", "deployment", name)
		queues := make([]string, 0)
		meta := mergedLabelsAndAnnotations(deployment.GetLabels(), deployment.GetAnnotations())
		for key, value := range meta {
			if !strings.HasPrefix(key, queueLabelPrefix) {
				continue
			}
			if _, ok := knownQueues[value]; !ok {
				logger.Info("Queue cannot be monitored, because it does not exist", "queue", value, "deployment", name)

				continue
			}
			logger.V(1).Info("Adding queue scaler", "queue", value, "deployment", name)
			queues = append(queues, value)
		}
		if len(queues) == 0 {
			// Nothing to scale on.
			continue
		}

		state = &deploymentState{
			phase:      lo.Ternary(replicas >= 1, phaseActive, phaseInactive),
			activityTs: s.clock.Now(),
			triggers:   make(map[string]int64),
			replicas:   replicas,
			threshold:  intFromMeta(meta, thresholdLabel, defaultThreshold),
			maxScale:   int32(intFromMeta(meta, maxScaleLabel, defaultMaxScale)),
		}
		s.mu.Lock()
		if _, raced := s.states[name]; !raced {
			s.states[name] = state
			for _, queue := range queues {
				if !lo.Contains(s.targets[queue], name) {
					s.targets[queue] = append(s.targets[queue], name)
				}
			}
		}
		s.mu.Unlock()
	}
}

// Feed routes one queue observation into the state machines of every
// deployment registered for that queue. Positive backlog drives scale-up,
// an empty queue drives scale-down.
func (s *Scaler) Feed(ctx context.Context, queueName string, pendingMessages, outgoingTotalCount int64) {
	s.mu.Lock()
	deployments := make([]string, len(s.targets[queueName]))
	copy(deployments, s.targets[queueName])
	s.mu.Unlock()

	trigger := Trigger{
		DestinationName:    queueName,
		OutgoingTotalCount: outgoingTotalCount,
		PendingMessages:    pendingMessages,
	}
	for _, deployment := range deployments {
		if pendingMessages > 0 {
			s.scaleUp(ctx, deployment, trigger)
		} else {
			s.scaleDown(ctx, deployment, trigger)
		}
	}
}

// scaleUp applies one scale-up event to the named deployment.
func (s *Scaler) scaleUp(ctx context.Context, deployment string, t Trigger) {
	logger := klog.FromContext(ctx)

	s.mu.Lock()
	state, ok := s.states[deployment]
	if !ok {
		s.mu.Unlock()

		return
	}
	phase := state.phase
	replicas := state.replicas
	threshold := state.threshold
	maxScale := state.maxScale
	s.mu.Unlock()

	switch phase {
	case phaseInactive:
		logger.V(1).Info("Scaling up", "deployment", deployment, "queue", t.DestinationName)
		if err := s.api.PatchScale(ctx, deployment, 1); err != nil {
			// Remain Inactive; the next trigger retries.
			logger.Error(err, "Error scaling up deployment", "deployment", deployment)

			return
		}
		s.commit(deployment, func(state *deploymentState) {
			state.phase = phaseActive
			state.activityTs = s.clock.Now()
			state.triggers[t.DestinationName] = t.OutgoingTotalCount
			state.replicas = 1
		})
	case phaseActive:
		desired := replicas
		if t.PendingMessages > threshold {
			desired = int32(t.PendingMessages / threshold)
			if desired > maxScale {
				desired = maxScale
			}
		}
		if desired > replicas {
			logger.V(1).Info("Scaling out", "deployment", deployment, "replicas", desired)
			if err := s.api.PatchScale(ctx, deployment, desired); err != nil {
				logger.Error(err, "Error scaling out deployment", "deployment", deployment)
				desired = replicas
			}
		}
		committed := desired
		s.commit(deployment, func(state *deploymentState) {
			state.phase = phaseActive
			state.activityTs = s.clock.Now()
			state.triggers[t.DestinationName] = t.OutgoingTotalCount
			state.replicas = committed
		})
	}
}

// scaleDown applies one scale-down event to the named deployment.
func (s *Scaler) scaleDown(ctx context.Context, deployment string, t Trigger) {
	logger := klog.FromContext(ctx)

	s.mu.Lock()
	state, ok := s.states[deployment]
	if !ok || state.phase == phaseInactive {
		s.mu.Unlock()

		return
	}
	if state.triggers[t.DestinationName] < t.OutgoingTotalCount {
		// The consumer is still draining messages; record the progress and
		// keep the activity fresh.
		state.triggers[t.DestinationName] = t.OutgoingTotalCount
		state.activityTs = s.clock.Now()
		s.mu.Unlock()

		return
	}
	if s.clock.Now().Sub(state.activityTs) < cooldownPeriod {
		logger.V(4).Info("Still in cooldown phase", "deployment", deployment)
		s.mu.Unlock()

		return
	}
	s.mu.Unlock()

	logger.V(1).Info("Scaling down", "deployment", deployment, "queue", t.DestinationName)
	if err := s.api.PatchScale(ctx, deployment, 0); err != nil {
		// Remain Active; the scaler reattempts on the next trigger.
		logger.Error(err, "Error scaling down deployment", "deployment", deployment)

		return
	}
	s.commit(deployment, func(state *deploymentState) {
		state.phase = phaseInactive
		state.activityTs = s.clock.Now()
		state.replicas = 0
	})
}

// commit mutates the deployment's state under the lock, if it still exists.
func (s *Scaler) commit(deployment string, mutate func(*deploymentState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[deployment]; ok {
		mutate(state)
	}
}

// mergedLabelsAndAnnotations flattens both metadata maps; labels win on key
// collisions.
func mergedLabelsAndAnnotations(labels, annotations map[string]string) map[string]string {
	return lo.Assign(annotations, labels)
}

// intFromMeta parses an integer metadata value, falling back on absence or
// garbage.
func intFromMeta(meta map[string]string, key string, fallback int64) int64 {
	raw, ok := meta[key]
	if !ok {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return value
}
