package configuration

import (
	"errors"
	"fmt"
)

var ErrInvalidConfiguration = errors.New("configuration: invalid")

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Configuration) error {
	if cfg.MqttConfiguration.QoS > 2 {
		return fmt.Errorf("%w: mqtt.qos must be 0, 1 or 2, got %d", ErrInvalidConfiguration, cfg.MqttConfiguration.QoS)
	}
	if cfg.MqttConfiguration.KeepAliveSeconds < 0 {
		return fmt.Errorf("%w: mqtt.keep_alive_seconds must not be negative", ErrInvalidConfiguration)
	}
	if cfg.MqttConfiguration.ConnectTimeoutSeconds < 0 {
		return fmt.Errorf("%w: mqtt.connect_timeout_seconds must not be negative", ErrInvalidConfiguration)
	}
	if cfg.Report.IntervalSeconds < 0 {
		return fmt.Errorf("%w: report.interval_seconds must not be negative", ErrInvalidConfiguration)
	}

	// influxdb is opt-in
	if cfg.InfluxDB.Enabled {
		if cfg.InfluxDB.URL == "" {
			return fmt.Errorf("%w: influxdb.url is required when influxdb is enabled", ErrInvalidConfiguration)
		}
		if cfg.InfluxDB.Bucket == "" {
			return fmt.Errorf("%w: influxdb.bucket is required when influxdb is enabled", ErrInvalidConfiguration)
		}
		if cfg.InfluxDB.BatchSize < 0 || cfg.InfluxDB.FlushIntervalSeconds < 0 {
			return fmt.Errorf("%w: influxdb batch settings must not be negative", ErrInvalidConfiguration)
		}
	}

	return nil
}
