package settings

import "fmt"

// Field describes one fixed-capacity slot of the settings image.
type Field struct {
	Name     string
	Size     int
	Required bool
}

var (
	FieldSSID     = Field{Name: "ssid", Size: SSIDSize, Required: true}
	FieldPassword = Field{Name: "password", Size: PasswordSize}
	FieldAddress  = Field{Name: "address", Size: AddressSize, Required: true}
	FieldUsername = Field{Name: "username", Size: UsernameSize}
	FieldTopic    = Field{Name: "topic", Size: MQTTTopicSize, Required: true}
)

// layout is the on-storage order of the text slots.
var layout = []Field{FieldSSID, FieldPassword, FieldAddress, FieldUsername, FieldTopic}

// MaxLen is the longest value the slot accepts. One byte is kept for the NUL terminator.
func (f Field) MaxLen() int {
	return f.Size - 1
}

// Check validates a single value against the slot.
func (f Field) Check(value string) error {
	if value == "" && f.Required {
		return fmt.Errorf("%w: %s", ErrFieldRequired, f.Name)
	}
	if len(value) > f.MaxLen() {
		return fmt.Errorf("%w: %s is %d bytes, max %d", ErrFieldTooLong, f.Name, len(value), f.MaxLen())
	}
	for i := 0; i < len(value); i++ {
		if value[i] == 0 {
			return fmt.Errorf("%w: %s contains NUL at offset %d", ErrInvalidCharacter, f.Name, i)
		}
	}

	return nil
}

// Settings holds network credentials and broker parameters of the sensor.
type Settings struct {
	SSID     string `json:"ssid" yaml:"ssid"`
	Password string `json:"password,omitempty" yaml:"password"`
	Address  string `json:"address" yaml:"address"`
	Username string `json:"username,omitempty" yaml:"username"`
	Topic    string `json:"topic" yaml:"topic"`
}

func (s Settings) values() []string {
	return []string{s.SSID, s.Password, s.Address, s.Username, s.Topic}
}

// Validate checks every field against its slot.
func (s Settings) Validate() error {
	for i, v := range s.values() {
		if err := layout[i].Check(v); err != nil {
			return err
		}
	}

	return nil
}

// Redacted returns a copy safe to log or publish.
func (s Settings) Redacted() Settings {
	if s.Password != "" {
		s.Password = "********"
	}

	return s
}

func (s Settings) String() string {
	r := s.Redacted()
	return fmt.Sprintf("ssid=%q address=%q username=%q topic=%q", r.SSID, r.Address, r.Username, r.Topic)
}
