package constants

const (
	AppName       = "equidade"
	ConfigName    = "config"
	ConfigFormat  = "yaml"
	EnvPrefix     = "EQUIDADE"
	DefaultLocale = "pt-BR"

	// PhoneRegion is the default region for parsing national phone numbers.
	PhoneRegion = "BR"
)

// Redis key prefixes.
const (
	UnitSelectionKeyPrefix = "unit_selection:"
	LimiterKeyPrefix       = "limiter:"
)

// NATS subject roots. Subjects are <root>.<entity>.<event>.<id>.
const (
	SubjectRoot = "equidade"
)
