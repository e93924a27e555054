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

// The tibco-ems-operator reconciles queue, topic and bridge resources onto an
// EMS server, publishes destination statistics, and scales deployments on
// queue backlog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/apimeister/tibco-ems-operator/internal"
	"github.com/apimeister/tibco-ems-operator/internal/emsadm"
	"github.com/apimeister/tibco-ems-operator/internal/version"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"go.uber.org/automaxprocs/maxprocs"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

// listenAddr is the operator's single HTTP surface.
const listenAddr = "0.0.0.0:8080"

func main() {
	// Set up contextual logging.
	klog.InitFlags(flag.CommandLine)
	logger := klog.Background()
	ctx := klog.NewContext(context.Background(), logger)

	// Parse the command-line options and their environment overrides.
	options := internal.NewOptions(logger)
	options.Read()
	if *options.Version {
		fmt.Println(version.Version())
		os.Exit(0)
	}
	if err := options.Validate(); err != nil {
		logger.Error(err, "invalid configuration")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	// Tune the runtime to the container quotas.
	if *options.AutoGOMAXPROCS {
		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			logger.V(1).Info(fmt.Sprintf(format, args...))
		})); err != nil {
			logger.Error(err, "failed to set GOMAXPROCS")
		}
	}
	if *options.RatioGOMEMLIMIT > 0 {
		if _, err := memlimit.SetGoMemLimitWithOpts(
			memlimit.WithRatio(*options.RatioGOMEMLIMIT),
			memlimit.WithProvider(memlimit.FromCgroupHybrid),
		); err != nil {
			logger.V(1).Info("failed to set GOMEMLIMIT", "err", err)
		}
	}

	// Build the clientsets. An empty master URL and kubeconfig fall back to
	// the in-cluster configuration.
	cfg, err := clientcmd.BuildConfigFromFlags(*options.MasterURL, *options.Kubeconfig)
	if err != nil {
		logger.Error(err, "error building kubeconfig")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	kubeClientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		logger.Error(err, "error building kubernetes clientset")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	dynamicClientset, err := dynamic.NewForConfig(cfg)
	if err != nil {
		logger.Error(err, "error building dynamic clientset")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	// Assemble the shared collaborators.
	caches := internal.NewCaches()
	api := internal.NewKubeAPI(dynamicClientset, kubeClientset, *options.KubernetesNamespace)
	admin := emsadm.New(*options.Username, *options.Password, *options.ServerURL,
		time.Duration(*options.AdminCommandTimeoutMS)*time.Millisecond)
	fail := internal.DefaultFailHandler

	// Build the telemetry registry.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		versioncollector.NewCollector(version.OperatorName.ToSnakeCase()),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: version.OperatorName.ToSnakeCase(), ReportErrors: true}),
		internal.NewStatsCollector(caches),
	)

	var scaler *internal.Scaler
	if *options.EnableScaling {
		scaler = internal.NewScaler(api, caches, clock.RealClock{}, *options.ResponsibleFor)
	}

	logger.Info("starting " + version.OperatorName.String())

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	addLoop := func(fn func(context.Context) error) {
		loopCtx, cancel := context.WithCancel(ctx)
		g.Add(func() error { return fn(loopCtx) }, func(error) { cancel() })
	}
	addLoop(internal.NewQueueReconciler(api, admin, caches, options, fail).Run)
	addLoop(internal.NewTopicReconciler(api, admin, caches, options, fail).Run)
	addLoop(internal.NewBridgeReconciler(api, admin, caches, options, fail).Run)
	addLoop(internal.NewQueueStatsPoller(api, admin, caches, options, scaler, fail).Run)
	addLoop(internal.NewTopicStatsPoller(api, admin, caches, options, fail).Run)
	if scaler != nil {
		addLoop(scaler.Run)
	}

	server := internal.NewServer(listenAddr, caches, registry).Build(ctx)
	g.Add(func() error {
		logger.V(1).Info("Listening", "addr", listenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "error shutting down server")
		}
	})

	if err := g.Run(); err != nil {
		var signalErr run.SignalError
		if errors.As(err, &signalErr) {
			logger.Info("Received signal, shutting down", "signal", signalErr.Signal.String())
			klog.FlushAndExit(klog.ExitFlushTimeout, 0)
		}
		logger.Error(err, "operator terminated")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
}
