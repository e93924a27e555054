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
	"flag"
	"fmt"
	"os"
	"strings"

	"k8s.io/klog/v2"
)

const (
	adminCommandTimeoutMSFlagName = "admin-command-timeout-ms"
	autoGOMAXPROCSFlagName        = "auto-gomaxprocs"
	doNotDeleteObjectsFlagName    = "do-not-delete-objects"
	enableScalingFlagName         = "enable-scaling"
	kubeconfigFlagName            = "kubeconfig"
	kubernetesNamespaceFlagName   = "kubernetes-namespace"
	masterURLFlagName             = "master"
	passwordFlagName              = "password"
	ratioGOMEMLIMITFlagName       = "ratio-gomemlimit"
	readOnlyFlagName              = "read-only"
	responsibleForFlagName        = "responsible-for"
	serverURLFlagName             = "server-url"
	statusRefreshInMSFlagName     = "status-refresh-in-ms"
	usernameFlagName              = "username"
	versionFlagName               = "version"
)

// Options represents the command-line options. Every flag can be overridden
// by an environment variable carrying the flag's name uppercased with dashes
// replaced by underscores (SERVER_URL overrides --server-url, and so on),
// which is how the operator is configured when deployed.
type Options struct {
	AdminCommandTimeoutMS *int
	AutoGOMAXPROCS        *bool
	DoNotDeleteObjects    *bool
	EnableScaling         *bool
	Kubeconfig            *string
	KubernetesNamespace   *string
	MasterURL             *string
	Password              *string
	RatioGOMEMLIMIT       *float64
	ReadOnly              *bool
	ResponsibleFor        *string
	ServerURL             *string
	StatusRefreshInMS     *int
	Username              *string
	Version               *bool

	logger klog.Logger
}

// NewOptions returns a new Options.
func NewOptions(logger klog.Logger) *Options {
	return &Options{
		logger: logger,
	}
}

// Read reads the command-line flags and applies environment overrides, if any.
func (o *Options) Read() {
	o.AdminCommandTimeoutMS = flag.Int(adminCommandTimeoutMSFlagName, 0, "Timeout in milliseconds for a single administrative command against the EMS server. Zero keeps the vendor default.")
	o.AutoGOMAXPROCS = flag.Bool(autoGOMAXPROCSFlagName, true, "Automatically set GOMAXPROCS to match CPU quota.")
	o.DoNotDeleteObjects = flag.Bool(doNotDeleteObjectsFlagName, false, "Ignore delete events for server-side cleanup. Objects are still dropped from the operator's caches.")
	o.EnableScaling = flag.Bool(enableScalingFlagName, false, "Start the deployment scaler.")
	o.Kubeconfig = flag.String(kubeconfigFlagName, os.Getenv("KUBECONFIG"), "Path to a kubeconfig. Only required if out-of-cluster.")
	o.KubernetesNamespace = flag.String(kubernetesNamespaceFlagName, "", "Namespace to watch and operate in.")
	o.MasterURL = flag.String(masterURLFlagName, os.Getenv("KUBERNETES_MASTER"), "The address of the Kubernetes API server. Overrides any value in kubeconfig. Only required if out-of-cluster.")
	o.Password = flag.String(passwordFlagName, "", "Password for the EMS admin connection.")
	o.RatioGOMEMLIMIT = flag.Float64(ratioGOMEMLIMITFlagName, 0.9, "GOMEMLIMIT to memory quota ratio.")
	o.ReadOnly = flag.Bool(readOnlyFlagName, false, "Skip the statistics pollers' resource status updates. Reconcilers still create and delete destinations on the server and write default statuses.")
	o.ResponsibleFor = flag.String(responsibleForFlagName, "", "Ownership partition tag. When set, only resources labelled tibcoems.apimeister.com/owner=<value> are reconciled; when empty, only unlabelled resources are.")
	o.ServerURL = flag.String(serverURLFlagName, "", "URL of the EMS server.")
	o.StatusRefreshInMS = flag.Int(statusRefreshInMSFlagName, 10000, "Interval in milliseconds between destination statistics refreshes.")
	o.Username = flag.String(usernameFlagName, "", "Username for the EMS admin connection.")
	o.Version = flag.Bool(versionFlagName, false, "Print version information and quit")
	flag.Parse()

	// Respect overrides, this also helps in testing without setting the same defaults in a bunch of places.
	flag.VisitAll(func(f *flag.Flag) {
		// Don't override flags that have been set. Environment variables do not take precedence over command-line flags.
		if f.Value.String() != f.DefValue {
			return
		}
		name := f.Name
		overriderForOptionName := strings.ReplaceAll(strings.ToUpper(name), "-", "_")
		if value, ok := os.LookupEnv(overriderForOptionName); ok {
			o.logger.V(1).Info(fmt.Sprintf("Overriding flag %s with %s=%s", name, overriderForOptionName, redactedFlagValue(name, value)))
			err := flag.Set(name, value)
			if err != nil {
				panic(fmt.Sprintf("Failed to set flag %s from %s: %v", name, overriderForOptionName, err))
			}
		}
	})
}

// Validate checks that every required option is present. The operator refuses
// to start otherwise.
func (o *Options) Validate() error {
	required := map[string]*string{
		usernameFlagName:            o.Username,
		passwordFlagName:            o.Password,
		serverURLFlagName:           o.ServerURL,
		kubernetesNamespaceFlagName: o.KubernetesNamespace,
	}
	for name, value := range required {
		if value == nil || *value == "" {
			return fmt.Errorf("required option %s (%s) is not set", name, strings.ReplaceAll(strings.ToUpper(name), "-", "_"))
		}
	}

	return nil
}

// redactedFlagValue keeps credentials out of the logs.
func redactedFlagValue(name, value string) string {
	if name == passwordFlagName {
		return "<redacted>"
	}

	return value
}
