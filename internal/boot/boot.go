package boot

import (
	"context"

	"github.com/supby/pressure2mqtt/internal/settings"
)

type Mode int

const (
	// ModeProvision means no usable settings were found.
	ModeProvision Mode = iota
	// ModeResume means stored settings are valid and reporting can start.
	ModeResume
)

func (m Mode) String() string {
	switch m {
	case ModeResume:
		return "resume"
	case ModeProvision:
		return "provision"
	}

	return "unknown"
}

type Decision struct {
	Mode     Mode
	Settings settings.Settings
}

type Loader interface {
	Load(ctx context.Context) (settings.State, error)
}

// Decide chooses the boot mode from the persisted settings.
func Decide(ctx context.Context, loader Loader) (Decision, error) {
	st, err := loader.Load(ctx)
	if err != nil {
		return Decision{}, err
	}

	s, ok := settings.Lookup(st)
	if !ok {
		return Decision{Mode: ModeProvision}, nil
	}

	return Decision{Mode: ModeResume, Settings: s}, nil
}
