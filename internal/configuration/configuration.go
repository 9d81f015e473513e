package configuration

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

const (
	defaultDataDir          = "./data"
	defaultProvisioningFile = "./provisioning.yaml"
	defaultMqttPort         = 1883
	defaultKeepAlive        = 60
	defaultConnectTimeout   = 10
	defaultBaudRate         = 115200
	defaultUnit             = "kPa"
	defaultReportInterval   = 10
	defaultInfluxBatchSize  = 100
	defaultInfluxFlush      = 10
	defaultLogLevel         = "error"
)

type configurationService struct {
	filename      string
	configuration Configuration
	mu            sync.RWMutex
}

// Init reads the YAML file, applies defaults and validates the result.
// A missing file yields the defaults.
func Init(filename string) (ConfigurationService, error) {
	cfg := Configuration{}

	buf, err := os.ReadFile(filename)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading configuration %v: %w", filename, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parsing configuration %v: %w", filename, err)
		}
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &configurationService{
		filename:      filename,
		configuration: cfg,
	}, nil
}

// ApplyDefaults fills zero values.
func ApplyDefaults(cfg *Configuration) {
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.ProvisioningFile == "" {
		cfg.ProvisioningFile = defaultProvisioningFile
	}
	if cfg.MqttConfiguration.Port == 0 {
		cfg.MqttConfiguration.Port = defaultMqttPort
	}
	if cfg.MqttConfiguration.KeepAliveSeconds == 0 {
		cfg.MqttConfiguration.KeepAliveSeconds = defaultKeepAlive
	}
	if cfg.MqttConfiguration.ConnectTimeoutSeconds == 0 {
		cfg.MqttConfiguration.ConnectTimeoutSeconds = defaultConnectTimeout
	}
	if cfg.Sensor.Unit == "" {
		cfg.Sensor.Unit = defaultUnit
	}
	if cfg.Sensor.Serial.BaudRate == 0 {
		cfg.Sensor.Serial.BaudRate = defaultBaudRate
	}
	if cfg.Report.IntervalSeconds == 0 {
		cfg.Report.IntervalSeconds = defaultReportInterval
	}
	if cfg.InfluxDB.BatchSize == 0 {
		cfg.InfluxDB.BatchSize = defaultInfluxBatchSize
	}
	if cfg.InfluxDB.FlushIntervalSeconds == 0 {
		cfg.InfluxDB.FlushIntervalSeconds = defaultInfluxFlush
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

func (cs *configurationService) GetConfiguration() Configuration {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return cs.configuration
}

// Update validates and stores the configuration, then writes it back to the file.
func (cs *configurationService) Update(updatedConfig Configuration) error {
	ApplyDefaults(&updatedConfig)
	if err := Validate(&updatedConfig); err != nil {
		return err
	}

	buf, err := yaml.Marshal(updatedConfig)
	if err != nil {
		return err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := os.WriteFile(cs.filename, buf, 0644); err != nil {
		return fmt.Errorf("writing configuration %v: %w", cs.filename, err)
	}
	cs.configuration = updatedConfig

	return nil
}
