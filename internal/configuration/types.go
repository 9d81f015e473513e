package configuration

type MqttConfiguration struct {
	Port                  uint16 `yaml:"port"`
	ClientID              string `yaml:"client_id"`
	KeepAliveSeconds      int    `yaml:"keep_alive_seconds"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	QoS                   byte   `yaml:"qos"`
}

type SerialConfiguration struct {
	PortName string `yaml:"port_name"`
	BaudRate uint32 `yaml:"baud_rate"`
}

type SensorConfiguration struct {
	Unit   string              `yaml:"unit"`
	Serial SerialConfiguration `yaml:"serial"`
}

type ReportConfiguration struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

type InfluxDBConfiguration struct {
	Enabled              bool   `yaml:"enabled"`
	URL                  string `yaml:"url"`
	Token                string `yaml:"token"`
	Org                  string `yaml:"org"`
	Bucket               string `yaml:"bucket"`
	BatchSize            int    `yaml:"batch_size"`
	FlushIntervalSeconds int    `yaml:"flush_interval_seconds"`
}

type Configuration struct {
	DataDir           string                `yaml:"data_dir"`
	ProvisioningFile  string                `yaml:"provisioning_file"`
	MqttConfiguration MqttConfiguration     `yaml:"mqtt"`
	Sensor            SensorConfiguration   `yaml:"sensor"`
	Report            ReportConfiguration   `yaml:"report"`
	InfluxDB          InfluxDBConfiguration `yaml:"influxdb"`
	LogLevel          string                `yaml:"log_level"` // info, warn, error, debug; each level also shows the ones before it
}
