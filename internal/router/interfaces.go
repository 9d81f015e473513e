package router

import (
	"context"
	"time"
)

type MQTTRouter interface {
	SubscribeOnReset(callback func())
	SubscribeOnIntervalChange(callback func(interval time.Duration))
}

// Client is the part of mqtt.MqttClient the router uses.
type Client interface {
	Publish(ctx context.Context, subTopic string, data []byte) error
	Subscribe(subTopic string, callback func(topic string, message []byte)) error
	RootTopic() string
}

type Resetter interface {
	Reset(ctx context.Context) error
}
