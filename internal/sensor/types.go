package sensor

import (
	"context"
	"errors"
	"time"
)

var ErrUnparsable = errors.New("sensor: unparsable sample")

type Reading struct {
	Pressure float64
	Unit     string
	Time     time.Time
}

// Source yields pressure samples. Read blocks until a sample is
// available, the context ends or the source is exhausted (io.EOF).
type Source interface {
	Read(ctx context.Context) (Reading, error)
	Close() error
}
