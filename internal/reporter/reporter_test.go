package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supby/pressure2mqtt/internal/logger"
	"github.com/supby/pressure2mqtt/internal/mqtt"
	"github.com/supby/pressure2mqtt/internal/sensor"
)

type fakeSource struct {
	readings []sensor.Reading
	errs     []error
}

func (s *fakeSource) Read(ctx context.Context) (sensor.Reading, error) {
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return sensor.Reading{}, err
		}
	}
	if len(s.readings) == 0 {
		return sensor.Reading{}, io.EOF
	}
	r := s.readings[0]
	s.readings = s.readings[1:]
	return r, nil
}

func (s *fakeSource) Close() error { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	messages [][]byte
	topics   []string
}

func (p *fakePublisher) Publish(ctx context.Context, subTopic string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, subTopic)
	p.messages = append(p.messages, data)
	return nil
}

type recordingSink struct {
	readings []sensor.Reading
}

func (s *recordingSink) WriteReading(ctx context.Context, r sensor.Reading) error {
	s.readings = append(s.readings, r)
	return nil
}

func testLogger() logger.Logger {
	return logger.New(&bytes.Buffer{}, "[test]", logger.LogLevelDebug)
}

func TestRunPublishesUntilSourceExhausted(t *testing.T) {
	ts := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{readings: []sensor.Reading{
		{Pressure: 101.3, Unit: "kPa", Time: ts},
		{Pressure: 101.4, Unit: "kPa", Time: ts.Add(time.Second)},
	}}
	pub := &fakePublisher{}
	rec := &recordingSink{}

	r := New(src, time.Millisecond, testLogger(), MQTTSink{Publisher: pub}, rec)
	err := r.Run(context.Background())
	assert.Equal(t, io.EOF, err)

	require.Len(t, pub.messages, 2)
	assert.Equal(t, []string{"", ""}, pub.topics)
	assert.Len(t, rec.readings, 2)

	var msg mqtt.ReadingMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &msg))
	assert.Equal(t, 101.3, msg.Pressure)
	assert.Equal(t, "kPa", msg.Unit)
	assert.True(t, ts.Equal(msg.Timestamp))
	assert.Contains(t, string(pub.messages[0]), `"timestamp":"2026-10-17T12:00:00Z"`)
}

func TestRunSkipsSourceErrors(t *testing.T) {
	src := &fakeSource{
		errs:     []error{errors.New("crc mismatch"), nil},
		readings: []sensor.Reading{{Pressure: 100}},
	}
	rec := &recordingSink{}

	err := New(src, time.Millisecond, testLogger(), rec).Run(context.Background())
	assert.Equal(t, io.EOF, err)
	assert.Len(t, rec.readings, 1)
}

func TestRunContinuesOnSinkError(t *testing.T) {
	src := &fakeSource{readings: []sensor.Reading{{Pressure: 1}, {Pressure: 2}}}
	pub := &fakePublisher{err: mqtt.ErrNotConnected}
	rec := &recordingSink{}

	err := New(src, time.Millisecond, testLogger(), MQTTSink{Publisher: pub}, rec).Run(context.Background())
	assert.Equal(t, io.EOF, err)
	assert.Len(t, rec.readings, 2)
}

type blockingSource struct{}

func (blockingSource) Read(ctx context.Context) (sensor.Reading, error) {
	<-ctx.Done()
	return sensor.Reading{}, ctx.Err()
}

func (blockingSource) Close() error { return nil }

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := New(blockingSource{}, time.Hour, testLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetIntervalRetunesRun(t *testing.T) {
	src := &fakeSource{readings: []sensor.Reading{{Pressure: 1}, {Pressure: 2}, {Pressure: 3}}}
	rec := &recordingSink{}

	r := New(src, time.Hour, testLogger(), rec)
	r.SetInterval(time.Millisecond)
	r.SetInterval(0)
	assert.Equal(t, time.Millisecond, r.Interval())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.Run(ctx)
	assert.Equal(t, io.EOF, err)
	assert.Len(t, rec.readings, 3)
}

func TestNewDefaultsInterval(t *testing.T) {
	assert.Equal(t, defaultInterval, New(&fakeSource{}, 0, testLogger()).Interval())
}
