package pasetotoken

import (
	"time"

	"github.com/equidadeplus/equidade_backend/config"
)

// NewPasetoManager creates a PASETO manager from the central config.
// Returns an error if the configuration is invalid.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	keys, err := LoadKeys(KeyStrings{
		Mode:         Mode(p.Mode),
		SymmetricHex: p.LocalKeyHex,
		SecretHex:    p.SecretKeyHex,
		PublicHex:    p.PublicKeyHex,
	})
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:      Mode(p.Mode),
		Issuer:    p.Issuer,
		Audience:  p.Audience,
		AccessTTL: time.Duration(p.AccessTTLMinutes) * time.Minute,
	}, keys)
}
