package boot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supby/pressure2mqtt/internal/settings"
)

type loaderFunc func(ctx context.Context) (settings.State, error)

func (f loaderFunc) Load(ctx context.Context) (settings.State, error) { return f(ctx) }

func TestDecideResume(t *testing.T) {
	s := settings.Settings{SSID: "workshop", Address: "10.0.0.5", Topic: "plant/pressure"}

	d, err := Decide(context.Background(), loaderFunc(func(ctx context.Context) (settings.State, error) {
		return settings.Configured{Settings: s}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, ModeResume, d.Mode)
	assert.Equal(t, s, d.Settings)
}

func TestDecideProvision(t *testing.T) {
	d, err := Decide(context.Background(), loaderFunc(func(ctx context.Context) (settings.State, error) {
		return settings.Unconfigured{}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, ModeProvision, d.Mode)
	assert.Equal(t, "provision", d.Mode.String())
}

func TestDecideFromErasedImage(t *testing.T) {
	image := make([]byte, settings.RecordSize)
	for i := range image {
		image[i] = 0xFF
	}

	d, err := Decide(context.Background(), loaderFunc(func(ctx context.Context) (settings.State, error) {
		return settings.Decode(image)
	}))
	require.NoError(t, err)
	assert.Equal(t, ModeProvision, d.Mode)
}

func TestDecideLoadError(t *testing.T) {
	_, err := Decide(context.Background(), loaderFunc(func(ctx context.Context) (settings.State, error) {
		return settings.Decode([]byte{1, 2, 3})
	}))
	assert.ErrorIs(t, err, settings.ErrCorruptRecord)
}

func TestDecideMarkedButEmptyImage(t *testing.T) {
	image := make([]byte, settings.RecordSize)
	require.NoError(t, settings.SetMarker(image, settings.ValidSettingsFlag))

	_, err := Decide(context.Background(), loaderFunc(func(ctx context.Context) (settings.State, error) {
		return settings.Decode(image)
	}))
	assert.ErrorIs(t, err, settings.ErrCorruptRecord)
}
