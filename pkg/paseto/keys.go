package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, encrypted
	ModePublic Mode = "public" // v4.public, signed
)

// Keys holds the key material for one mode. A public-mode verifier may hold
// only the public key.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey

	Secret *paseto.V4AsymmetricSecretKey
	Public *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the hex-encoded form found in configuration.
type KeyStrings struct {
	Mode Mode

	SymmetricHex string

	SecretHex string
	PublicHex string
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeLocal:
		h := strings.TrimSpace(in.SymmetricHex)
		if h == "" {
			return Keys{}, ErrConfig{Msg: "local mode requires local_key_hex"}
		}
		k, err := paseto.V4SymmetricKeyFromHex(h)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "invalid symmetric key hex: " + err.Error()}
		}
		return Keys{Mode: ModeLocal, Symmetric: &k}, nil

	case ModePublic:
		out := Keys{Mode: ModePublic}

		if h := strings.TrimSpace(in.SecretHex); h != "" {
			sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(h)
			if err != nil {
				return Keys{}, ErrConfig{Msg: "invalid secret key hex: " + err.Error()}
			}
			pk := sk.Public()
			out.Secret, out.Public = &sk, &pk
		}

		if h := strings.TrimSpace(in.PublicHex); h != "" {
			pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(h)
			if err != nil {
				return Keys{}, ErrConfig{Msg: "invalid public key hex: " + err.Error()}
			}
			out.Public = &pk
		}

		if out.Public == nil {
			return Keys{}, ErrConfig{Msg: "public mode requires secret_key_hex and/or public_key_hex"}
		}
		return out, nil

	default:
		return Keys{}, ErrConfig{Msg: "unknown mode (use local|public)"}
	}
}

// Generate creates fresh key material for mode.
func Generate(mode Mode) (Keys, error) {
	switch mode {
	case ModeLocal:
		k := paseto.NewV4SymmetricKey()
		return Keys{Mode: ModeLocal, Symmetric: &k}, nil
	case ModePublic:
		sk := paseto.NewV4AsymmetricSecretKey()
		pk := sk.Public()
		return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}, nil
	default:
		return Keys{}, ErrConfig{Msg: "unknown mode (use local|public)"}
	}
}

// Strings exports the keys in the form LoadKeys accepts.
func (k Keys) Strings() KeyStrings {
	out := KeyStrings{Mode: k.Mode}
	if k.Symmetric != nil {
		out.SymmetricHex = k.Symmetric.ExportHex()
	}
	if k.Secret != nil {
		out.SecretHex = k.Secret.ExportHex()
	}
	if k.Public != nil {
		out.PublicHex = k.Public.ExportHex()
	}
	return out
}
