package usecase

import (
	"errors"

	domain "github.com/aq2208/gstore-api/internal/entity"
)

var (
	ErrDuplicate                   = errors.New("duplicate idempotency key")
	ErrInvalidQuantity             = domain.ErrInvalidQuantity
	ErrItemNotFound                = domain.ErrItemNotFound
	ErrInvalidCustomer             = domain.ErrInvalidCustomer
	ErrMissingProductReference     = domain.ErrMissingProductReference
	ErrInvalidAction               = errors.New("invalid cart action")
	ErrInvalidProductID            = errors.New("invalid product id")
	ErrProductNotFound             = errors.New("product not found")
	ErrEmptyCart                   = errors.New("cart is empty")
	ErrMissingParameters           = errors.New("missing parameters")
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	ErrOrderNotFound               = errors.New("order not found")
	ErrAlreadyPaid                 = errors.New("order already paid")
)

// IsClientError reports errors caused by the request rather than the system.
func IsClientError(err error) bool {
	for _, e := range []error{
		ErrInvalidQuantity, ErrInvalidAction, ErrInvalidProductID, ErrInvalidCustomer,
		ErrItemNotFound, ErrEmptyCart, ErrMissingParameters, ErrSignatureVerificationFailed,
		ErrOrderNotFound, ErrAlreadyPaid, ErrDuplicate, ErrMissingProductReference,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
