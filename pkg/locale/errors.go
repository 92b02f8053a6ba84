package locale

import (
	"fmt"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
)

// InvalidLocaleIdentifierError is returned when a string is not a valid
// locale identifier.
type InvalidLocaleIdentifierError struct {
	*axonerrors.BaseError
	Identifier string
}

// NewInvalidLocaleIdentifierError creates the error for identifier, with an
// optional cause.
func NewInvalidLocaleIdentifierError(identifier string, cause error) *InvalidLocaleIdentifierError {
	base := axonerrors.New(
		axonerrors.InvalidLocaleIdentifierErrorCode,
		fmt.Sprintf("%q is not a valid locale identifier", identifier),
	).WithContext("identifier", identifier)
	if cause != nil {
		base.WithCause(cause)
	}
	return &InvalidLocaleIdentifierError{
		BaseError:  base,
		Identifier: identifier,
	}
}
