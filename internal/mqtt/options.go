package mqtt

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/settings"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 250 // milliseconds
	pingTimeout              = 1 * time.Second
)

// brokerURL builds the paho broker URL from the stored address. The
// address may be a bare host, host:port or a full URL.
func brokerURL(address string, port uint16) string {
	if strings.Contains(address, "://") {
		return address
	}
	if _, _, err := net.SplitHostPort(address); err == nil {
		return "tcp://" + address
	}

	return "tcp://" + net.JoinHostPort(address, strconv.Itoa(int(port)))
}

func clientID(cfg configuration.MqttConfiguration) string {
	if cfg.ClientID != "" {
		return cfg.ClientID
	}

	return fmt.Sprintf("pressure2mqtt-%06d", time.Now().Nanosecond()/1000)
}

func connectTimeout(cfg configuration.MqttConfiguration) time.Duration {
	if cfg.ConnectTimeoutSeconds <= 0 {
		return defaultConnectTimeout
	}

	return time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
}

func buildClientOptions(cfg configuration.MqttConfiguration, s settings.Settings) *mqttlib.ClientOptions {
	opts := mqttlib.NewClientOptions()
	opts.AddBroker(brokerURL(s.Address, cfg.Port))
	opts.SetClientID(clientID(cfg))

	if s.Username != "" {
		opts.SetUsername(s.Username)
		opts.SetPassword(s.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout(cfg))
	opts.SetKeepAlive(time.Duration(cfg.KeepAliveSeconds) * time.Second)
	opts.SetPingTimeout(pingTimeout)
	opts.SetOrderMatters(false)

	// broker publishes this if we vanish without Dispose
	opts.SetWill(fmt.Sprintf("%v/%v", s.Topic, StatusSubTopic), StatusOffline, 1, true)

	return opts
}
