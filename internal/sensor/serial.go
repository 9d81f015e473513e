package sensor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/supby/pressure2mqtt/internal/configuration"
	"github.com/supby/pressure2mqtt/internal/logger"
	"go.bug.st/serial.v1"
)

type line struct {
	text string
	err  error
}

// LineSource reads one sample per line from a byte stream.
type LineSource struct {
	rc     io.ReadCloser
	unit   string
	lines  chan line
	done   chan struct{}
	logger logger.Logger
	now    func() time.Time

	closeOnce sync.Once
}

// OpenSerial opens the configured serial port and reads samples from it.
func OpenSerial(cfg configuration.SensorConfiguration, log logger.Logger) (*LineSource, error) {
	mode := &serial.Mode{
		BaudRate: int(cfg.Serial.BaudRate),
	}

	port, err := serial.Open(cfg.Serial.PortName, mode)
	if err != nil {
		return nil, err
	}

	return NewLineSource(port, cfg.Unit, log), nil
}

func NewLineSource(rc io.ReadCloser, unit string, log logger.Logger) *LineSource {
	s := &LineSource{
		rc:     rc,
		unit:   unit,
		lines:  make(chan line),
		done:   make(chan struct{}),
		logger: log.WithPrefix("[Sensor]"),
		now:    time.Now,
	}

	go s.scan()

	return s
}

func (s *LineSource) scan() {
	defer close(s.lines)

	scanner := bufio.NewScanner(s.rc)
	for scanner.Scan() {
		if !s.send(line{text: scanner.Text()}) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.send(line{err: err})
	}
}

func (s *LineSource) send(l line) bool {
	select {
	case s.lines <- l:
		return true
	case <-s.done:
		return false
	}
}

// Read returns the next parsable sample, skipping garbage lines.
func (s *LineSource) Read(ctx context.Context) (Reading, error) {
	for {
		select {
		case <-ctx.Done():
			return Reading{}, ctx.Err()
		case l, ok := <-s.lines:
			if !ok {
				return Reading{}, io.EOF
			}
			if l.err != nil {
				return Reading{}, l.err
			}
			if l.text == "" {
				continue
			}

			v, err := ParseLine(l.text)
			if errors.Is(err, ErrUnparsable) {
				s.logger.Warn("Skipping line: %v", err)
				continue
			}

			return Reading{Pressure: v, Unit: s.unit, Time: s.now()}, nil
		}
	}
}

func (s *LineSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.rc.Close()
}
