package settings

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// MarshalBinary encodes the settings into a RecordSize image with the
// validity marker set. Settings are validated first.
func (s Settings) MarshalBinary() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, RecordSize)
	off := 0
	for i, v := range s.values() {
		copy(buf[off:off+layout[i].Size], v)
		off += layout[i].Size
	}
	binary.LittleEndian.PutUint16(buf[off:], ValidSettingsFlag)

	return buf, nil
}

// Marker returns the validity marker of an image.
func Marker(image []byte) (uint16, error) {
	if len(image) != RecordSize {
		return 0, fmt.Errorf("%w: length %d, want %d", ErrCorruptRecord, len(image), RecordSize)
	}

	return binary.LittleEndian.Uint16(image[RecordSize-flagSize:]), nil
}

// IsValid reports whether the image carries ValidSettingsFlag.
func IsValid(image []byte) bool {
	m, err := Marker(image)
	return err == nil && m == ValidSettingsFlag
}

// SetMarker overwrites the marker of an image in place.
func SetMarker(image []byte, marker uint16) error {
	if _, err := Marker(image); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(image[RecordSize-flagSize:], marker)

	return nil
}

// Decode turns an image into a State. Images without the valid marker
// are Unconfigured whatever their content. A marked image whose values
// fail Validate is corrupt.
func Decode(image []byte) (State, error) {
	m, err := Marker(image)
	if err != nil {
		return nil, err
	}
	if m != ValidSettingsFlag {
		return Unconfigured{}, nil
	}

	vals := make([]string, len(layout))
	off := 0
	for i, f := range layout {
		slot := image[off : off+f.Size]
		n := bytes.IndexByte(slot, 0)
		if n < 0 {
			return nil, fmt.Errorf("%w: %s is not terminated", ErrCorruptRecord, f.Name)
		}
		vals[i] = string(slot[:n])
		off += f.Size
	}

	s := Settings{
		SSID:     vals[0],
		Password: vals[1],
		Address:  vals[2],
		Username: vals[3],
		Topic:    vals[4],
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	return Configured{Settings: s}, nil
}
