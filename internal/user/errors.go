package user

import "errors"

// InputError reports bad user input. Message is meant to be shown to the
// end user as is.
type InputError struct {
	Message string
}

// Error satisfies [error].
func (e *InputError) Error() string {
	return e.Message
}

var _ error = (*InputError)(nil)

var (
	ErrEmptyName           = &InputError{Message: "Name cannot be empty."}
	ErrEmptyID             = &InputError{Message: "ID cannot be empty."}
	ErrInvalidID           = &InputError{Message: "ID must consist of alphanumeric characters, -, _, and . only."}
	ErrEmptyPassword       = &InputError{Message: "Password cannot be empty."}
	ErrEmptyEmailAddress   = &InputError{Message: "Email Address cannot be empty."}
	ErrInvalidEmailAddress = &InputError{Message: "Invalid email address. Email must be of form example@domain.com"}
	ErrEmptyHomeAddress    = &InputError{Message: "Home Address cannot be empty."}

	// ErrIncorrectPassword is returned by CheckPassword on a mismatch.
	ErrIncorrectPassword = &InputError{Message: "Incorrect password."}
)

// ErrUnknownField is returned by ValidateField for a field that has no validator.
var ErrUnknownField = errors.New("unknown field")

// AsInputError unwraps err into an *InputError if it holds one.
func AsInputError(err error) (*InputError, bool) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr, true
	}

	return nil, false
}
