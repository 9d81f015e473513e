package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/mqtt"
	"github.com/supby/pressure2mqtt/internal/settings"
)

const (
	MQTT_CMD_RESET        = "reset"
	MQTT_CMD_GET_SETTINGS = "get_settings"
	MQTT_CMD_SET_INTERVAL = "set_interval"
)

type mqttRouter struct {
	ctx                  context.Context
	configurationService configuration.ConfigurationService
	mqttClient           Client
	store                Resetter
	settings             settings.Settings
	logger               logger.Logger

	mu               sync.Mutex
	onReset          func()
	onIntervalChange func(interval time.Duration)
}

func NewMQTTRouter(
	ctx context.Context,
	configurationService configuration.ConfigurationService,
	mqttClient Client,
	store Resetter,
	current settings.Settings,
	log logger.Logger) (MQTTRouter, error) {
	ret := &mqttRouter{
		ctx:                  ctx,
		configurationService: configurationService,
		mqttClient:           mqttClient,
		store:                store,
		settings:             current,
		logger:               log.WithPrefix("[MQTT Router]"),
	}

	err := mqttClient.Subscribe(fmt.Sprintf("%v/#", mqtt.CommandSubTopic), ret.mqttMessage)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (h *mqttRouter) SubscribeOnReset(callback func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReset = callback
}

func (h *mqttRouter) SubscribeOnIntervalChange(callback func(interval time.Duration)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onIntervalChange = callback
}

func (h *mqttRouter) mqttMessage(topic string, message []byte) {
	prefix := fmt.Sprintf("%v/%v/", h.mqttClient.RootTopic(), mqtt.CommandSubTopic)
	if !strings.HasPrefix(topic, prefix) {
		return
	}

	switch command := strings.TrimPrefix(topic, prefix); command {
	case MQTT_CMD_RESET:
		h.handleReset()
	case MQTT_CMD_GET_SETTINGS:
		h.publishSettings()
	case MQTT_CMD_SET_INTERVAL:
		h.handleSetInterval(message)
	default:
		h.logger.Warn("Unknown command %q", command)
	}
}

func (h *mqttRouter) handleReset() {
	h.logger.Info("Factory reset requested")

	if err := h.store.Reset(h.ctx); err != nil {
		h.logger.Error("Factory reset failed: %v", err)
		return
	}

	h.mu.Lock()
	cb := h.onReset
	h.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (h *mqttRouter) publishSettings() {
	r := h.settings.Redacted()
	jsonData, err := json.Marshal(mqtt.SettingsMessage{
		SSID:     r.SSID,
		Address:  r.Address,
		Username: r.Username,
		Topic:    r.Topic,
	})
	if err != nil {
		h.logger.Error("Error Marshal settings: %v", err)
		return
	}

	if err := h.mqttClient.Publish(h.ctx, mqtt.SettingsSubTopic, jsonData); err != nil {
		h.logger.Error("Publishing settings: %v", err)
	}
}

// handleSetInterval persists a new report interval, payload in whole seconds.
func (h *mqttRouter) handleSetInterval(message []byte) {
	seconds, err := strconv.Atoi(strings.TrimSpace(string(message)))
	if err != nil || seconds <= 0 {
		h.logger.Warn("Invalid interval %q", message)
		return
	}

	cfg := h.configurationService.GetConfiguration()
	cfg.Report.IntervalSeconds = seconds
	if err := h.configurationService.Update(cfg); err != nil {
		h.logger.Error("Saving interval: %v", err)
		return
	}

	h.logger.Info("Report interval set to %vs", seconds)

	h.mu.Lock()
	cb := h.onIntervalChange
	h.mu.Unlock()

	if cb != nil {
		cb(time.Duration(seconds) * time.Second)
	}
}
