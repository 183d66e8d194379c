package security

import (
	"errors"

	"github.com/aq2208/gstore-api/configs"
)

// KeyMaterial holds the payment provider credentials. KeyID is public and goes to
// the browser checkout widget; KeySecret signs API calls and payment signatures.
type KeyMaterial struct {
	KeyID     string
	KeySecret []byte
}

func NewKeyMaterial(c configs.Config) (*KeyMaterial, error) {
	km, err := LoadKeyMaterial(c)
	return &km, err
}

func LoadKeyMaterial(c configs.Config) (KeyMaterial, error) {
	if c.Payment.KeySecret == "" {
		return KeyMaterial{}, errors.New("missing payment.key_secret")
	}
	return KeyMaterial{
		KeyID:     c.Payment.KeyID,
		KeySecret: []byte(c.Payment.KeySecret),
	}, nil
}
