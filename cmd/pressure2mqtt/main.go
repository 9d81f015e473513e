package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/supby/pressure2mqtt/internal/boot"
	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/db"
	"github.com/supby/pressure2mqtt/internal/influxdb"
	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/mqtt"
	"github.com/supby/pressure2mqtt/internal/provisioning"
	"github.com/supby/pressure2mqtt/internal/reporter"
	"github.com/supby/pressure2mqtt/internal/router"
	"github.com/supby/pressure2mqtt/internal/sensor"
	"github.com/supby/pressure2mqtt/internal/settings"
	"github.com/supby/pressure2mqtt/internal/wifi"
)

const (
	initialConnectWait = 250 * time.Millisecond
	maxConnectWait     = 60 * time.Second
)

type options struct {
	configFile     string
	factoryReset   bool
	forceProvision bool
}

func main() {
	var configFile = flag.String("c", "./configuration.yaml", "path to config file name")
	var factoryReset = flag.Bool("reset", false, "clear stored settings and exit")
	var forceProvision = flag.Bool("provision", false, "provision from the provisioning file even if settings are stored")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitForInterruptSignal()
		cancel()
	}()

	code := start(ctx, options{
		configFile:     *configFile,
		factoryReset:   *factoryReset,
		forceProvision: *forceProvision,
	})
	cancel()

	os.Exit(code)
}

// start runs the application and returns the process exit code. Every
// resource it opens is released before it returns.
func start(parent context.Context, opts options) int {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	bootLogger := logger.GetLogger("[main]", logger.LogLevelError)

	configService, err := configuration.Init(opts.configFile)
	if err != nil {
		bootLogger.Error("Configuration initialization error: %v", err)
		return 1
	}
	cfg := configService.GetConfiguration()

	log := logger.GetLogger("[main]", logger.ParseLevel(cfg.LogLevel))

	store, err := db.NewSettingsDB(cfg.DataDir, db.SettingsDBOptions{
		Logger: log.WithPrefix("[DB]"),
	})
	if err != nil {
		log.Error("db initialization error: %v", err)
		return 1
	}
	defer store.Close(ctx)

	if opts.factoryReset {
		if err := store.Reset(ctx); err != nil {
			log.Error("Factory reset failed: %v", err)
			return 1
		}
		log.Info("Settings cleared")
		return 0
	}

	decision, err := boot.Decide(ctx, store)
	if errors.Is(err, settings.ErrCorruptRecord) {
		log.Warn("Stored settings unreadable, provisioning: %v", err)
		decision, err = boot.Decision{Mode: boot.ModeProvision}, nil
	}
	if err != nil {
		log.Error("Loading settings: %v", err)
		return 1
	}

	if decision.Mode == boot.ModeProvision || opts.forceProvision {
		s, err := provision(ctx, &cfg, store, log)
		if err != nil {
			log.Error("Provisioning failed: %v", err)
			return 1
		}
		decision = boot.Decision{Mode: boot.ModeResume, Settings: s}
	}

	log.Info("Starting with %v", decision.Settings)

	if err := serve(ctx, cancel, configService, decision.Settings, store, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("%v", err)
		return 1
	}

	log.Info("exiting app...")
	return 0
}

func provision(ctx context.Context, cfg *configuration.Configuration, store db.SettingsDB, log logger.Logger) (settings.Settings, error) {
	req, err := provisioning.LoadRequest(cfg.ProvisioningFile)
	if err != nil {
		return settings.Settings{}, err
	}

	p := provisioning.Provisioner{
		Network:   wifi.Host{Logger: log.WithPrefix("[WiFi]")},
		Connector: mqtt.Prober{Configuration: cfg, Logger: log},
		Store:     store,
		Logger:    log.WithPrefix("[Provisioning]"),
	}

	return p.Run(ctx, req)
}

func serve(
	ctx context.Context,
	cancel context.CancelFunc,
	configService configuration.ConfigurationService,
	s settings.Settings,
	store db.SettingsDB,
	log logger.Logger) error {
	cfg := configService.GetConfiguration()

	mqttClient := mqtt.NewClient(&cfg, s, log)
	if err := connect(ctx, mqttClient, log); err != nil {
		return err
	}
	defer mqttClient.Dispose()

	source, err := sensor.OpenSerial(cfg.Sensor, log)
	if err != nil {
		return err
	}
	defer source.Close()

	sinks := []reporter.Sink{reporter.MQTTSink{Publisher: mqttClient}}

	influx, err := influxdb.Connect(cfg.InfluxDB, s.Topic)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
	case err != nil:
		log.Warn("InfluxDB unavailable, continuing without it: %v", err)
	default:
		influx.SetOnError(func(err error) {
			log.Error("InfluxDB write: %v", err)
		})
		defer influx.Close()
		sinks = append(sinks, influx)
	}

	interval := time.Duration(cfg.Report.IntervalSeconds) * time.Second
	rep := reporter.New(source, interval, log, sinks...)

	mqttRouter, err := router.NewMQTTRouter(ctx, configService, mqttClient, store, s, log)
	if err != nil {
		return err
	}
	mqttRouter.SubscribeOnReset(func() {
		log.Info("Settings cleared, stopping; next start enters provisioning")
		cancel()
	})
	mqttRouter.SubscribeOnIntervalChange(rep.SetInterval)

	return rep.Run(ctx)
}

// connect retries while the broker failure is transient.
func connect(ctx context.Context, mqttClient mqtt.MqttClient, log logger.Logger) error {
	wait := initialConnectWait
	for {
		result, err := mqttClient.Connect(ctx)
		if result.IsSuccess() {
			return nil
		}
		if !result.Retryable() || ctx.Err() != nil {
			return err
		}

		log.Warn("Connect failed (%v), retrying in %v", result, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxConnectWait {
			wait = maxConnectWait
		}
	}
}

func waitForInterruptSignal() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigchan)
	}()
	<-sigchan
}
