package mqtt

import (
	"errors"
	"fmt"

	"github.com/eclipse/paho.mqtt.golang/packets"
)

// ConnectResult is the outcome of a connect attempt. Values match the
// result codes of the sensor firmware's MQTT library.
type ConnectResult int8

const (
	ConnectionRefused           ConnectResult = -2
	ConnectionTimeout           ConnectResult = -1
	Success                     ConnectResult = 0
	UnacceptableProtocolVersion ConnectResult = 1
	IdentifierRejected          ConnectResult = 2
	ServerUnavailable           ConnectResult = 3
	BadUsernameOrPassword       ConnectResult = 4
	NotAuthorized               ConnectResult = 5
)

var resultNames = map[ConnectResult]string{
	ConnectionRefused:           "connection refused",
	ConnectionTimeout:           "connection timeout",
	Success:                     "success",
	UnacceptableProtocolVersion: "unacceptable protocol version",
	IdentifierRejected:          "identifier rejected",
	ServerUnavailable:           "server unavailable",
	BadUsernameOrPassword:       "bad user name or password",
	NotAuthorized:               "not authorized",
}

// ParseConnectResult converts a numeric result code back to a ConnectResult.
func ParseConnectResult(code int) (ConnectResult, error) {
	if code < int(ConnectionRefused) || code > int(NotAuthorized) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownConnectResult, code)
	}

	return ConnectResult(code), nil
}

func (r ConnectResult) Int() int {
	return int(r)
}

func (r ConnectResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}

	return fmt.Sprintf("unknown result %d", int(r))
}

func (r ConnectResult) IsSuccess() bool {
	return r == Success
}

// Retryable reports whether the failure may clear up without changing settings.
func (r ConnectResult) Retryable() bool {
	switch r {
	case ConnectionRefused, ConnectionTimeout, ServerUnavailable:
		return true
	}

	return false
}

// Err returns nil for Success and a *ConnectError otherwise.
func (r ConnectResult) Err() error {
	if r == Success {
		return nil
	}

	return &ConnectError{Result: r}
}

// ConnectError carries the result of a failed connect attempt.
// It matches ErrConnectionFailed with errors.Is.
type ConnectError struct {
	Result ConnectResult
	Cause  error
}

func (e *ConnectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v (%d): %v", ErrConnectionFailed, e.Result, e.Result.Int(), e.Cause)
	}

	return fmt.Sprintf("%v: %v (%d)", ErrConnectionFailed, e.Result, e.Result.Int())
}

func (e *ConnectError) Is(target error) bool {
	return target == ErrConnectionFailed
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// ResultOf extracts the ConnectResult from an error returned by Connect.
// Errors that carry no result map to ConnectionRefused.
func ResultOf(err error) ConnectResult {
	if err == nil {
		return Success
	}

	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Result
	}

	return ConnectionRefused
}

// resultFromReturnCode maps a CONNACK return code onto ConnectResult.
func resultFromReturnCode(rc byte) ConnectResult {
	switch rc {
	case packets.Accepted:
		return Success
	case packets.ErrRefusedBadProtocolVersion:
		return UnacceptableProtocolVersion
	case packets.ErrRefusedIDRejected:
		return IdentifierRejected
	case packets.ErrRefusedServerUnavailable:
		return ServerUnavailable
	case packets.ErrRefusedBadUsernameOrPassword:
		return BadUsernameOrPassword
	case packets.ErrRefusedNotAuthorised:
		return NotAuthorized
	}

	// network error, protocol violation and anything unknown
	return ConnectionRefused
}
