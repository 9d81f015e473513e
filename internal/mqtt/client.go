package mqtt

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/settings"
)

// newPahoClient is replaced in tests.
var newPahoClient = mqttlib.NewClient

type MqttClient interface {
	Connect(ctx context.Context) (ConnectResult, error)
	Dispose()
	IsConnected() bool
	Publish(ctx context.Context, subTopic string, data []byte) error
	Subscribe(subTopic string, callback func(topic string, message []byte)) error
	RootTopic() string
}

type subscription struct {
	topic    string
	callback func(topic string, message []byte)
}

type defaultMqttClient struct {
	innerClient    mqttlib.Client
	configuration  configuration.MqttConfiguration
	settings       settings.Settings
	connectTimeout time.Duration
	logger         logger.Logger

	mu            sync.RWMutex
	connected     bool
	subscriptions map[string]subscription
}

// NewClient prepares a client for the broker and topic held in s.
// No network activity happens until Connect.
func NewClient(config *configuration.Configuration, s settings.Settings, log logger.Logger) MqttClient {
	retClient := &defaultMqttClient{
		configuration:  config.MqttConfiguration,
		settings:       s,
		connectTimeout: connectTimeout(config.MqttConfiguration),
		logger:         log.WithPrefix("[MQTT Client]"),
		subscriptions:  make(map[string]subscription),
	}

	setLibraryLogger(retClient.logger)

	opts := buildClientOptions(config.MqttConfiguration, s)
	opts.SetOnConnectHandler(func(client mqttlib.Client) {
		retClient.handleConnect()
	})
	opts.SetConnectionLostHandler(func(client mqttlib.Client, err error) {
		retClient.setConnected(false)
		retClient.logger.Warn("Connect lost: %v", err)
	})

	retClient.innerClient = newPahoClient(opts)

	return retClient
}

var libraryLoggerOnce sync.Once

func setLibraryLogger(l logger.Logger) {
	libraryLoggerOnce.Do(func() {
		mqttlib.ERROR = log.New(l.GetWriter(), "[MQTT Client] ", 0)
	})
}

// Connect performs one connect attempt and reports its outcome.
func (cl *defaultMqttClient) Connect(ctx context.Context) (ConnectResult, error) {
	token := cl.innerClient.Connect()

	timer := time.NewTimer(cl.connectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		cl.abandonConnect()
		return ConnectionTimeout, &ConnectError{Result: ConnectionTimeout, Cause: ErrTimeout}
	case <-ctx.Done():
		cl.abandonConnect()
		return ConnectionTimeout, &ConnectError{Result: ConnectionTimeout, Cause: ctx.Err()}
	}

	result := resultFromToken(token)
	if result != Success {
		cl.logger.Error("Connect to '%v' failed: %v", cl.settings.Address, result)
		return result, &ConnectError{Result: result, Cause: token.Error()}
	}

	cl.setConnected(true)
	cl.logger.Info("Connected to MQTT on '%v'", cl.settings.Address)

	return Success, nil
}

// abandonConnect drops a pending attempt so the next Connect starts clean.
func (cl *defaultMqttClient) abandonConnect() {
	cl.logger.Warn("Connect to '%v' still pending, abandoning", cl.settings.Address)
	cl.innerClient.Disconnect(0)
}

type returnCoder interface {
	ReturnCode() byte
}

func resultFromToken(token mqttlib.Token) ConnectResult {
	rc, ok := token.(returnCoder)
	if !ok {
		if token.Error() != nil {
			return ConnectionRefused
		}
		return Success
	}

	result := resultFromReturnCode(rc.ReturnCode())
	if result == Success && token.Error() != nil {
		return ConnectionRefused
	}

	return result
}

// handleConnect runs on paho's goroutine after every (re)connect.
func (cl *defaultMqttClient) handleConnect() {
	cl.setConnected(true)

	cl.mu.RLock()
	subs := make([]subscription, 0, len(cl.subscriptions))
	for _, s := range cl.subscriptions {
		subs = append(subs, s)
	}
	cl.mu.RUnlock()

	for _, s := range subs {
		if err := cl.subscribe(s); err != nil {
			cl.logger.Error("Restoring subscription %v: %v", s.topic, err)
		}
	}

	cl.innerClient.Publish(cl.topic(StatusSubTopic), cl.configuration.QoS, true, StatusOnline)
}

func (cl *defaultMqttClient) setConnected(v bool) {
	cl.mu.Lock()
	cl.connected = v
	cl.mu.Unlock()
}

func (cl *defaultMqttClient) IsConnected() bool {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	return cl.connected
}

func (cl *defaultMqttClient) RootTopic() string {
	return cl.settings.Topic
}

func (cl *defaultMqttClient) topic(subTopic string) string {
	if subTopic == "" {
		return cl.settings.Topic
	}

	return fmt.Sprintf("%v/%v", cl.settings.Topic, subTopic)
}

func (cl *defaultMqttClient) Dispose() {
	cl.logger.Info("Disposing MQTT client")

	if cl.IsConnected() {
		token := cl.innerClient.Publish(cl.topic(StatusSubTopic), cl.configuration.QoS, true, StatusOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}

	cl.setConnected(false)
	cl.innerClient.Disconnect(defaultDisconnectQuiesce)
}

func (cl *defaultMqttClient) Publish(ctx context.Context, subTopic string, data []byte) error {
	if !cl.IsConnected() {
		return ErrNotConnected
	}

	topic := cl.topic(subTopic)
	token := cl.innerClient.Publish(topic, cl.configuration.QoS, false, data)

	return waitToken(ctx, token, ErrPublishFailed, topic)
}

// Subscribe registers callback for <root>/<subTopic>. The subscription is
// restored after reconnects.
func (cl *defaultMqttClient) Subscribe(subTopic string, callback func(topic string, message []byte)) error {
	s := subscription{
		topic:    cl.topic(subTopic),
		callback: callback,
	}

	cl.mu.Lock()
	cl.subscriptions[s.topic] = s
	cl.mu.Unlock()

	if !cl.IsConnected() {
		return nil
	}

	return cl.subscribe(s)
}

func (cl *defaultMqttClient) subscribe(s subscription) error {
	token := cl.innerClient.Subscribe(s.topic, cl.configuration.QoS, func(client mqttlib.Client, msg mqttlib.Message) {
		go s.callback(msg.Topic(), msg.Payload())
	})

	return waitToken(context.Background(), token, ErrSubscribeFailed, s.topic)
}

func waitToken(ctx context.Context, token mqttlib.Token, kind error, topic string) error {
	timer := time.NewTimer(defaultPublishTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("%w: %v: %v", kind, topic, ErrTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v: %v", kind, topic, ctx.Err())
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %v: %v", kind, topic, err)
	}

	return nil
}
