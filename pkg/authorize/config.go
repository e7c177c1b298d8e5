package authorize

import "github.com/equidadeplus/equidade_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool

	// PolicySyncEnabled propagates membership changes to other instances
	// through Postgres LISTEN/NOTIFY
	PolicySyncEnabled bool

	// Channel is the notification channel used when PolicySyncEnabled is set
	Channel string
}

// DefaultConfig returns sensible defaults for authorization configuration
func DefaultConfig() Config {
	return Config{
		EnableAudit:       true,
		PolicySyncEnabled: false,
		Channel:           DefaultChannel,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	out := DefaultConfig()
	out.EnableAudit = c.EnableAudit
	out.PolicySyncEnabled = c.PolicySyncEnabled
	return out
}
