package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/mqtt"
	"github.com/supby/pressure2mqtt/internal/sensor"
)

// Sink receives every reading taken by the reporter.
type Sink interface {
	WriteReading(ctx context.Context, r sensor.Reading) error
}

type Publisher interface {
	Publish(ctx context.Context, subTopic string, data []byte) error
}

// MQTTSink publishes readings as JSON on the root topic.
type MQTTSink struct {
	Publisher Publisher
}

func (s MQTTSink) WriteReading(ctx context.Context, r sensor.Reading) error {
	data, err := json.Marshal(mqtt.ReadingMessage{
		Pressure:  r.Pressure,
		Unit:      r.Unit,
		Timestamp: r.Time.UTC(),
	})
	if err != nil {
		return err
	}

	return s.Publisher.Publish(ctx, "", data)
}

const defaultInterval = 10 * time.Second

type Reporter struct {
	source  sensor.Source
	sinks   []Sink
	logger  logger.Logger
	changed chan struct{}

	mu       sync.Mutex
	interval time.Duration
}

func New(source sensor.Source, interval time.Duration, log logger.Logger, sinks ...Sink) *Reporter {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Reporter{
		source:   source,
		sinks:    sinks,
		interval: interval,
		logger:   log.WithPrefix("[Reporter]"),
		changed:  make(chan struct{}, 1),
	}
}

// Run reports one reading per interval until ctx ends or the source is exhausted.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	for {
		if err := r.tick(ctx); err != nil {
			return err
		}

		if err := r.wait(ctx, ticker); err != nil {
			return err
		}
	}
}

// wait blocks until the next tick, applying interval changes meanwhile.
func (r *Reporter) wait(ctx context.Context, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.changed:
			ticker.Reset(r.Interval())
		case <-ticker.C:
			return nil
		}
	}
}

func (r *Reporter) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// SetInterval changes the reporting period of a running or future Run.
// Non-positive values are ignored.
func (r *Reporter) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	r.mu.Lock()
	r.interval = d
	r.mu.Unlock()

	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *Reporter) tick(ctx context.Context) error {
	reading, err := r.source.Read(ctx)
	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	if err != nil {
		r.logger.Warn("Reading sensor: %v", err)
		return nil
	}

	r.logger.Debug("Pressure %v %v", reading.Pressure, reading.Unit)

	for _, s := range r.sinks {
		if err := s.WriteReading(ctx, reading); err != nil {
			r.logger.Error("Writing reading: %v", err)
		}
	}

	return nil
}
