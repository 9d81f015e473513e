package influxdb

import (
	"context"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/sensor"
)

type fakeWriter struct {
	points  []*write.Point
	flushed int
}

func (w *fakeWriter) WritePoint(point *write.Point) { w.points = append(w.points, point) }
func (w *fakeWriter) Flush()                        { w.flushed++ }

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(configuration.InfluxDBConfiguration{}, "plant/pressure")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestWriteReading(t *testing.T) {
	w := &fakeWriter{}
	c := newClient(w, "plant/line1/pressure")
	ts := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	err := c.WriteReading(context.Background(), sensor.Reading{Pressure: 101.3, Unit: "kPa", Time: ts})
	require.NoError(t, err)
	require.Len(t, w.points, 1)

	p := w.points[0]
	assert.Equal(t, "pressure", p.Name())
	assert.Equal(t, ts, p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"topic": "plant/line1/pressure", "unit": "kPa"}, tags)

	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, "value", p.FieldList()[0].Key)
	assert.Equal(t, 101.3, p.FieldList()[0].Value)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	c := newClient(w, "plant/pressure")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, w.flushed)
	assert.False(t, c.IsConnected())

	err := c.WriteReading(context.Background(), sensor.Reading{Pressure: 1})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestWriteErrorsCallback(t *testing.T) {
	c := newClient(&fakeWriter{}, "plant/pressure")

	got := make(chan error, 1)
	c.SetOnError(func(err error) { got <- err })

	errorsCh := make(chan error, 1)
	errorsCh <- ErrConnectionFailed
	close(errorsCh)
	c.handleWriteErrors(errorsCh)

	assert.ErrorIs(t, <-got, ErrConnectionFailed)
}
