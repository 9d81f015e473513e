package settings

import "errors"

var (
	// ErrFieldTooLong is returned when a value does not fit its slot
	// together with the terminating NUL.
	ErrFieldTooLong = errors.New("settings: field too long")

	// ErrFieldRequired is returned when a mandatory field is empty.
	ErrFieldRequired = errors.New("settings: field required")

	// ErrInvalidCharacter is returned for values containing a NUL byte.
	ErrInvalidCharacter = errors.New("settings: invalid character")

	// ErrCorruptRecord is returned when an image cannot be decoded.
	ErrCorruptRecord = errors.New("settings: corrupt record")
)
