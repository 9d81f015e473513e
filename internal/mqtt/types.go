package mqtt

import "time"

const (
	StatusSubTopic   = "status"
	SettingsSubTopic = "settings"
	CommandSubTopic  = "cmd"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

type ReadingMessage struct {
	Pressure  float64   `json:"pressure"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

type SettingsMessage struct {
	SSID     string `json:"ssid"`
	Address  string `json:"address"`
	Username string `json:"username,omitempty"`
	Topic    string `json:"topic"`
}
