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
	"k8s.io/klog/v2"
)

// FailHandler terminates the operator on an unrecoverable error. Reconcile
// failures against the EMS server are deliberately fatal: the operator trades
// availability for a simple crash-restart recovery model, relying on its
// supervisor (the kubelet) to bring it back up from a clean slate.
//
// Tests substitute their own handler to observe fatal paths.
type FailHandler func(err error, msg string)

// DefaultFailHandler logs the error and exits with status 1.
func DefaultFailHandler(err error, msg string) {
	klog.Background().Error(err, msg)
	klog.FlushAndExit(klog.ExitFlushTimeout, 1)
}
