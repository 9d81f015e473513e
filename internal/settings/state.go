package settings

// State is the result of loading persisted settings: either
// Unconfigured or Configured.
type State interface {
	isState()
}

// Unconfigured is the state of blank, erased or reset storage.
type Unconfigured struct{}

// Configured carries settings from an image with a valid marker.
type Configured struct {
	Settings Settings
}

func (Unconfigured) isState() {}
func (Configured) isState()   {}

// Lookup unwraps a State.
func Lookup(st State) (Settings, bool) {
	if c, ok := st.(Configured); ok {
		return c.Settings, true
	}

	return Settings{}, false
}
