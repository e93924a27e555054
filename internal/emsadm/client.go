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

// Package emsadm drives the EMS server's administrative interface through the
// vendor admin CLI: commands are written into a script file and executed with
// tibemsadmin, whose captured output is parsed back. One client is shared
// process-wide; a mutex serializes the underlying admin session.
package emsadm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/apimeister/tibco-ems-operator/internal/broker"
	"k8s.io/klog/v2"
)

// defaultBinary is where the EMS container image ships the admin CLI.
const defaultBinary = "/opt/tibco/ems/8.5/bin/tibemsadmin"

// Client implements broker.Admin over the admin CLI.
type Client struct {
	mu        sync.Mutex
	binary    string
	username  string
	password  string
	serverURL string
	timeout   time.Duration

	// execute runs one admin script and returns the captured output. Tests
	// substitute their own implementation.
	execute func(ctx context.Context, script string) (string, error)
}

// Ensure Client implements broker.Admin.
var _ broker.Admin = &Client{}

// New returns a Client for the given admin endpoint. A zero timeout keeps the
// CLI's own command timeout.
func New(username, password, serverURL string, timeout time.Duration) *Client {
	c := &Client{
		binary:    defaultBinary,
		username:  username,
		password:  password,
		serverURL: serverURL,
		timeout:   timeout,
	}
	c.execute = c.runScript

	return c
}

// runScript writes the script to a temporary file and executes the admin CLI
// against it.
func (c *Client) runScript(ctx context.Context, script string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()

	file, err := os.CreateTemp("", "tibemsadm-*.script")
	if err != nil {
		return "", fmt.Errorf("error creating script file: %w", err)
	}
	defer os.Remove(file.Name())
	if _, err := file.WriteString(script); err != nil {
		file.Close()

		return "", fmt.Errorf("error writing script file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("error closing script file: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary,
		"-user", c.username,
		"-password", c.password,
		"-server", c.serverURL,
		"-script", file.Name(),
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running %s: %w (%s)", c.binary, err, strings.TrimSpace(stderr.String()))
	}
	klog.FromContext(ctx).V(4).Info("Admin script executed", "durationMS", time.Since(start).Milliseconds())

	return stdout.String(), nil
}

// runCommand executes a single admin command and surfaces command-level
// errors the CLI reports on its output.
func (c *Client) runCommand(ctx context.Context, command string) (string, error) {
	out, err := c.execute(ctx, command+"\n")
	if err != nil {
		return "", err
	}
	if line, failed := errorLine(out); failed {
		return out, fmt.Errorf("admin command %q failed: %s", command, line)
	}

	return out, nil
}

// errorLine scans CLI output for a reported command failure.
func errorLine(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Error:") || strings.HasPrefix(trimmed, "invalid command") {
			return trimmed, true
		}
	}

	return "", false
}

// alreadyExists reports whether a create failed only because the destination
// is already present.
func alreadyExists(out string) bool {
	return strings.Contains(out, "already exists")
}

// ListAllQueues implements broker.Admin.
func (c *Client) ListAllQueues(ctx context.Context) ([]broker.QueueInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := c.runCommand(ctx, "show queues")
	if err != nil {
		return nil, err
	}

	return parseQueues(out), nil
}

// ListAllTopics implements broker.Admin.
func (c *Client) ListAllTopics(ctx context.Context) ([]broker.TopicInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := c.runCommand(ctx, "show topics")
	if err != nil {
		return nil, err
	}

	return parseTopics(out), nil
}

// CreateQueue implements broker.Admin. Recreating an existing queue degrades
// to a property update, keeping the operation idempotent for the caller.
func (c *Client) CreateQueue(ctx context.Context, info broker.QueueInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	props := destinationProperties(info.MaxBytes, info.MaxMessages, info.ExpiryOverride, info.Prefetch, info.Global)
	out, err := c.runCommand(ctx, fmt.Sprintf("create queue %s %s", info.Name, props))
	if err != nil {
		if !alreadyExists(out) {
			return err
		}
		_, err = c.runCommand(ctx, fmt.Sprintf("setprop queue %s %s", info.Name, props))
	}

	return err
}

// DeleteQueue implements broker.Admin.
func (c *Client) DeleteQueue(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.runCommand(ctx, "delete queue "+name)

	return err
}

// CreateTopic implements broker.Admin.
func (c *Client) CreateTopic(ctx context.Context, info broker.TopicInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	props := destinationProperties(info.MaxBytes, info.MaxMessages, info.ExpiryOverride, info.Prefetch, info.Global)
	out, err := c.runCommand(ctx, fmt.Sprintf("create topic %s %s", info.Name, props))
	if err != nil {
		if !alreadyExists(out) {
			return err
		}
		_, err = c.runCommand(ctx, fmt.Sprintf("setprop topic %s %s", info.Name, props))
	}

	return err
}

// DeleteTopic implements broker.Admin.
func (c *Client) DeleteTopic(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.runCommand(ctx, "delete topic "+name)

	return err
}

// CreateBridge implements broker.Admin. Recreating an existing bridge is
// treated as success.
func (c *Client) CreateBridge(ctx context.Context, info broker.BridgeInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := c.runCommand(ctx, "create bridge "+bridgeSpec(info))
	if err != nil && alreadyExists(out) {
		return nil
	}

	return err
}

// DeleteBridge implements broker.Admin.
func (c *Client) DeleteBridge(ctx context.Context, info broker.BridgeInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.runCommand(ctx, "delete bridge "+bridgeSpecWithoutSelector(info))

	return err
}

// destinationProperties renders the property list of a create or setprop
// command. Zero values are set explicitly so a recreate resets properties the
// spec no longer carries.
func destinationProperties(maxBytes, maxMessages, expiration int64, prefetch int32, global bool) string {
	props := fmt.Sprintf("maxbytes=%d,maxmsgs=%d,expiration=%d,prefetch=%d", maxBytes, maxMessages, expiration, prefetch)
	if global {
		props += ",global"
	}

	return props
}

// bridgeSpec renders the source/target/selector clause of a bridge command.
func bridgeSpec(info broker.BridgeInfo) string {
	spec := bridgeSpecWithoutSelector(info)
	if info.Selector != "" {
		spec += fmt.Sprintf(" selector=%q", info.Selector)
	}

	return spec
}

func bridgeSpecWithoutSelector(info broker.BridgeInfo) string {
	return fmt.Sprintf("source=%s:%s target=%s:%s", info.SourceType, info.SourceName, info.TargetType, info.TargetName)
}
