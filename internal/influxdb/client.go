package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/sensor"
)

const (
	defaultConnectTimeout = 10 * time.Second
	measurement           = "pressure"
	millisecondsPerSecond = 1000
)

type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Client mirrors readings into an InfluxDB v2 bucket. Writes are batched
// and non-blocking; failures arrive through the OnError callback.
type Client struct {
	client   influxdb2.Client
	writeAPI pointWriter
	tags     map[string]string

	connected bool
	mu        sync.RWMutex
	onError   func(err error)
}

// Connect pings the server and prepares the write API. topic tags every point.
func Connect(cfg configuration.InfluxDBConfiguration, topic string) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(cfg.BatchSize)).
			SetFlushInterval(uint(cfg.FlushIntervalSeconds)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %v", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	c := newClient(writeAPI, topic)
	c.client = client

	go c.handleWriteErrors(writeAPI.Errors())

	return c, nil
}

func newClient(w pointWriter, topic string) *Client {
	return &Client{
		writeAPI:  w,
		tags:      map[string]string{"topic": topic},
		connected: true,
	}
}

func (c *Client) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// WriteReading queues a point for r.
func (c *Client) WriteReading(ctx context.Context, r sensor.Reading) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	tags := make(map[string]string, len(c.tags)+1)
	for k, v := range c.tags {
		tags[k] = v
	}
	if r.Unit != "" {
		tags["unit"] = r.Unit
	}

	c.writeAPI.WritePoint(write.NewPoint(
		measurement,
		tags,
		map[string]interface{}{"value": r.Pressure},
		r.Time,
	))

	return nil
}

// Close flushes pending points and releases the client.
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.mu.Unlock()

	c.writeAPI.Flush()
	if c.client != nil {
		c.client.Close()
	}

	return nil
}
