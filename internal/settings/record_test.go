package settings

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	return Settings{
		SSID:     "workshop",
		Password: "hunter22",
		Address:  "192.168.1.10",
		Username: "sensor",
		Topic:    "plant/line1/pressure",
	}
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 100, SSIDSize)
	assert.Equal(t, 50, PasswordSize)
	assert.Equal(t, 30, AddressSize)
	assert.Equal(t, 50, UsernameSize)
	assert.Equal(t, 150, MQTTTopicSize)
	assert.Equal(t, uint16(0xDAB0), ValidSettingsFlag)
	assert.Equal(t, 382, RecordSize)
}

func TestMarshalDecode(t *testing.T) {
	s := testSettings()

	image, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, image, RecordSize)
	assert.Equal(t, []byte{0xB0, 0xDA}, image[RecordSize-2:])
	assert.True(t, IsValid(image))

	st, err := Decode(image)
	require.NoError(t, err)

	got, ok := Lookup(st)
	assert.True(t, ok)
	assert.Equal(t, s, got)
}

func TestDecodeWithoutMarker(t *testing.T) {
	erased := bytes.Repeat([]byte{0xFF}, RecordSize)
	zeroed := make([]byte, RecordSize)

	for _, image := range [][]byte{erased, zeroed} {
		assert.False(t, IsValid(image))

		st, err := Decode(image)
		require.NoError(t, err)
		assert.Equal(t, Unconfigured{}, st)
	}
}

func TestDecodeClearedMarker(t *testing.T) {
	image, err := testSettings().MarshalBinary()
	require.NoError(t, err)

	require.NoError(t, SetMarker(image, ClearedSettingsFlag))
	assert.False(t, IsValid(image))

	st, err := Decode(image)
	require.NoError(t, err)
	_, ok := Lookup(st)
	assert.False(t, ok)
}

func TestDecodeAnyOtherMarker(t *testing.T) {
	image, err := testSettings().MarshalBinary()
	require.NoError(t, err)

	for _, m := range []uint16{0xDAB1, 0xB0DA, 0x00B0, 0xDA00} {
		require.NoError(t, SetMarker(image, m))
		assert.False(t, IsValid(image))

		st, err := Decode(image)
		require.NoError(t, err)
		assert.Equal(t, Unconfigured{}, st)
	}
}

func TestDecodeMarkedButEmpty(t *testing.T) {
	image := make([]byte, RecordSize)
	require.NoError(t, SetMarker(image, ValidSettingsFlag))
	assert.True(t, IsValid(image))

	st, err := Decode(image)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.Contains(t, err.Error(), "field required: ssid")
	assert.Nil(t, st)

	// topic missing only
	image, err = testSettings().MarshalBinary()
	require.NoError(t, err)
	off := SSIDSize + PasswordSize + AddressSize + UsernameSize
	copy(image[off:off+MQTTTopicSize], make([]byte, MQTTTopicSize))

	_, err = Decode(image)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestDecodeWrongLength(t *testing.T) {
	_, err := Decode(make([]byte, RecordSize-1))
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.False(t, IsValid(nil))
}

func TestDecodeUnterminatedField(t *testing.T) {
	image, err := testSettings().MarshalBinary()
	require.NoError(t, err)

	copy(image[SSIDSize:SSIDSize+PasswordSize], strings.Repeat("p", PasswordSize))

	_, err = Decode(image)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestValidateCapacity(t *testing.T) {
	s := testSettings()
	s.SSID = strings.Repeat("s", SSIDSize-1)
	s.Topic = strings.Repeat("t", MQTTTopicSize-1)
	assert.NoError(t, s.Validate())

	image, err := s.MarshalBinary()
	require.NoError(t, err)
	st, err := Decode(image)
	require.NoError(t, err)
	assert.Equal(t, Configured{Settings: s}, st)

	s.SSID = strings.Repeat("s", SSIDSize)
	assert.ErrorIs(t, s.Validate(), ErrFieldTooLong)

	s = testSettings()
	s.Address = "mqtt.broker.example.internal.lan"
	assert.ErrorIs(t, s.Validate(), ErrFieldTooLong)

	_, err = s.MarshalBinary()
	assert.ErrorIs(t, err, ErrFieldTooLong)
}

func TestValidateRequiredAndCharacters(t *testing.T) {
	s := testSettings()
	s.Topic = ""
	assert.ErrorIs(t, s.Validate(), ErrFieldRequired)

	s = testSettings()
	s.Password = ""
	s.Username = ""
	assert.NoError(t, s.Validate())

	s = testSettings()
	s.Username = "sen\x00sor"
	assert.ErrorIs(t, s.Validate(), ErrInvalidCharacter)
}

func TestRedacted(t *testing.T) {
	s := testSettings()

	r := s.Redacted()
	assert.NotEqual(t, s.Password, r.Password)
	assert.Equal(t, s.SSID, r.SSID)
	assert.NotContains(t, s.String(), s.Password)

	s.Password = ""
	assert.Equal(t, "", s.Redacted().Password)
}
