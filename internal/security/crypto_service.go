package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Outcome of checking a payment confirmation signature.
type Outcome int

const (
	Valid Outcome = iota
	InvalidSignature
	ProviderError
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case InvalidSignature:
		return "invalid_signature"
	case ProviderError:
		return "provider_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var ErrNoSecret = errors.New("payment key secret not configured")

// PaymentSigner implements the provider's checkout signature scheme:
// hex(HMAC-SHA256(key_secret, provider_order_id + "|" + provider_payment_id)).
type PaymentSigner struct {
	secret []byte
}

func NewPaymentSigner(km *KeyMaterial) (*PaymentSigner, error) {
	if km == nil || len(km.KeySecret) == 0 {
		return nil, ErrNoSecret
	}
	return &PaymentSigner{secret: km.KeySecret}, nil
}

func (s *PaymentSigner) mac(orderID, paymentID string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(orderID + "|" + paymentID))
	return h.Sum(nil)
}

// Sign is used by the sandbox provider and tests to produce genuine signatures.
func (s *PaymentSigner) Sign(orderID, paymentID string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	return hex.EncodeToString(s.mac(orderID, paymentID)), nil
}

// VerifyPaymentSignature compares in constant time. A signature that is not even
// hex is reported as InvalidSignature; a missing secret as ProviderError.
func (s *PaymentSigner) VerifyPaymentSignature(orderID, paymentID, signature string) (Outcome, error) {
	if s == nil || len(s.secret) == 0 {
		return ProviderError, ErrNoSecret
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return InvalidSignature, fmt.Errorf("decode signature: %w", err)
	}
	if !hmac.Equal(got, s.mac(orderID, paymentID)) {
		return InvalidSignature, nil
	}
	return Valid, nil
}
