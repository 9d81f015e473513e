package settings

// Slot sizes of the persisted settings image, in bytes.
const (
	SSIDSize      = 100
	PasswordSize  = 50
	AddressSize   = 30
	UsernameSize  = 50
	MQTTTopicSize = 150
)

// ValidSettingsFlag marks an image written by a completed provisioning run.
const ValidSettingsFlag uint16 = 0xDAB0

// ClearedSettingsFlag is written over the marker on factory reset.
const ClearedSettingsFlag uint16 = 0x0000

const flagSize = 2

// RecordSize is the length of a marshalled settings image.
const RecordSize = SSIDSize + PasswordSize + AddressSize + UsernameSize + MQTTTopicSize + flagSize
