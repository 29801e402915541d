package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/niscmed/wearcore/pkg/config"
	"github.com/niscmed/wearcore/pkg/device"
	"github.com/niscmed/wearcore/pkg/diag"
	"github.com/niscmed/wearcore/pkg/env"
	"github.com/niscmed/wearcore/pkg/framework"
	"github.com/niscmed/wearcore/pkg/serial"
	"github.com/niscmed/wearcore/pkg/telemetry"
	"github.com/niscmed/wearcore/pkg/thread"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file (YAML).")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(configFile)
	if err != nil {
		glog.Exitf("load config: %v", err)
	}

	dev, err := device.New(cfg.Monitoring)
	if err != nil {
		glog.Exitf("create device: %v", err)
	}
	mgr := thread.NewManager()
	for i := 0; i < thread.Count; i++ {
		id := thread.ID(i)
		if err := mgr.SetWatchdogTimeout(id, cfg.Watchdog.Timeout()); err != nil {
			glog.Exitf("watchdog timeout: %v", err)
		}
	}

	deviceID := env.DeviceID()
	sessionID := env.SessionID()
	glog.Infof("device %s starting session %s", deviceID, sessionID)

	queue := telemetry.NewQueue(cfg.MQTT)
	if token := queue.Connect(); token.Wait() && token.Error() != nil {
		glog.Warningf("uplink connect: %v (will retry)", token.Error())
	}
	defer queue.Close()

	registry := prometheus.NewRegistry()
	metrics := diag.NewMetrics(registry)
	recorder := diag.NewRecorder(diag.DefaultRecorderCapacity)

	runner := framework.NewRunner().HandleSignals()
	ctx := runner.Context
	shutdownCtx, shutdown := context.WithCancel(ctx)
	runner.Context = shutdownCtx

	supervisor := &diag.Supervisor{
		Mgr:             mgr,
		Device:          dev,
		Recorder:        recorder,
		Metrics:         metrics,
		Interval:        cfg.Watchdog.CheckInterval(),
		MaxThreadErrors: 10,
	}
	uplink := &telemetry.Uplink{
		Queue:     queue,
		Device:    dev,
		Mgr:       mgr,
		DeviceID:  deviceID,
		SessionID: sessionID,
		Shutdown:  shutdown,
	}

	if err := dev.StartMonitoring(); err != nil {
		glog.Exitf("start monitoring: %v", err)
	}
	if err := createThreads(shutdownCtx, mgr, dev, cfg, supervisor, uplink, recorder); err != nil {
		glog.Exitf("create threads: %v", err)
	}

	if cfg.Metrics.Enabled {
		runner.Go(metricsServer(cfg.Metrics.Listen, registry))
	}
	runner.Go(framework.NamedRun("threads", framework.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	if err := runner.Wait(); err != nil {
		glog.Exitf("exit: %v", err)
	}
	glog.Info("bye")
}

func createThreads(ctx context.Context, mgr *thread.Manager, dev *device.Device,
	cfg *config.Config, supervisor *diag.Supervisor, uplink *telemetry.Uplink,
	recorder *diag.Recorder) error {

	sim := device.NewSimulator(uint32(time.Now().UnixNano()))

	err := mgr.Create(ctx, thread.Supervisor, func(ctx context.Context) {
		supervisor.Run(ctx)
	})
	if err != nil {
		return err
	}

	err = mgr.Create(ctx, thread.DataAcquisition, func(ctx context.Context) {
		ticker := time.NewTicker(cfg.Monitoring.SampleInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mgr.Heartbeat(thread.DataAcquisition)
				mgr.Checkpoint(ctx, thread.DataAcquisition)
				if err := dev.AddSample(sim.Next()); err != nil {
					glog.V(2).Infof("sample not accepted: %v", err)
				}
			}
		}
	})
	if err != nil {
		return err
	}

	err = mgr.Create(ctx, thread.DataProcessing, func(ctx context.Context) {
		ticker := time.NewTicker(cfg.Monitoring.ProcessInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mgr.Heartbeat(thread.DataProcessing)
				mgr.Checkpoint(ctx, thread.DataProcessing)
				dev.ProcessSamples()
			}
		}
	})
	if err != nil {
		return err
	}

	err = mgr.Create(ctx, thread.Communication, func(ctx context.Context) {
		uplink.Heartbeat = func() {
			mgr.Heartbeat(thread.Communication)
			mgr.Checkpoint(ctx, thread.Communication)
		}
		uplink.Run(ctx)
	})
	if err != nil {
		return err
	}

	return mgr.Create(ctx, thread.Diagnostics, func(ctx context.Context) {
		runDiagnostics(ctx, mgr, dev, cfg, recorder)
	})
}

// runDiagnostics reports status over the serial link when one is
// configured, and keeps its own heartbeat either way.
func runDiagnostics(ctx context.Context, mgr *thread.Manager, dev *device.Device,
	cfg *config.Config, recorder *diag.Recorder) {

	var comm *serial.Comm
	if cfg.Serial.Device != "" {
		port, err := os.OpenFile(cfg.Serial.Device, os.O_RDWR, 0)
		if err != nil {
			recorder.Record(diag.CategoryComm, "open serial port: %v", err)
		} else {
			if comm, err = serial.NewComm(port, cfg.Serial); err != nil {
				recorder.Record(diag.CategoryComm, "serial transport: %v", err)
				comm = nil
			} else {
				go comm.Run(ctx)
			}
		}
	}

	cycle := &framework.Cycle{
		Name:     "diagnostics",
		Interval: time.Second,
		Fn: func(ctx context.Context) error {
			mgr.Heartbeat(thread.Diagnostics)
			mgr.Checkpoint(ctx, thread.Diagnostics)
			if comm == nil {
				return nil
			}
			payload, err := json.Marshal(dev.Stats())
			if err != nil {
				return err
			}
			if len(payload) > serial.MaxPayload {
				payload = payload[:serial.MaxPayload]
			}
			frame := &serial.Frame{Type: serial.TypeStatus, Data: payload}
			if err := comm.Send(frame, 0); err != nil {
				glog.V(2).Infof("status frame dropped: %v", err)
			}
			return nil
		},
	}
	cycle.Run(ctx)
}

func metricsServer(listen string, registry *prometheus.Registry) framework.Runnable {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: listen, Handler: mux}
	return framework.NamedRun("metrics", framework.RunFunc(func(ctx context.Context) error {
		glog.Infof("metrics on %s", listen)
		return framework.RunWithContextCloser(ctx, server, func() error {
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}))
}
