package user

import (
	"crypto/subtle"
	"fmt"
	"regexp"
)

var (
	idPattern           = regexp.MustCompile(`^[A-Za-z0-9\-_.]+$`)
	emailAddressPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,4}$`)
)

// Names of the validated fields, as they appear in the JSON encoding of User.
const (
	FieldName         = "name"
	FieldID           = "id"
	FieldPassword     = "password"
	FieldEmailAddress = "emailAddress"
	FieldHomeAddress  = "homeAddress"
)

// ValidatedFields lists the fields ValidateField knows, in validation order.
var ValidatedFields = []string{
	FieldName,
	FieldID,
	FieldPassword,
	FieldEmailAddress,
	FieldHomeAddress,
}

func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	return nil
}

// ValidateID checks a username: non-empty and made of ASCII letters, digits, -, _ and . only.
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidID
	}

	return nil
}

// ValidatePassword only requires a non-empty password.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidateEmailAddress expects the local@domain.tld shape with a 2-4 letter TLD.
func ValidateEmailAddress(emailAddress string) error {
	if emailAddress == "" {
		return ErrEmptyEmailAddress
	}
	if !emailAddressPattern.MatchString(emailAddress) {
		return ErrInvalidEmailAddress
	}

	return nil
}

func ValidateHomeAddress(homeAddress string) error {
	if homeAddress == "" {
		return ErrEmptyHomeAddress
	}

	return nil
}

// ValidateField runs the validator registered for field, which is the JSON
// name of a User field. It returns ErrUnknownField for fields with no rules.
func ValidateField(field, value string) error {
	switch field {
	case FieldName:
		return ValidateName(value)
	case FieldID:
		return ValidateID(value)
	case FieldPassword:
		return ValidatePassword(value)
	case FieldEmailAddress:
		return ValidateEmailAddress(value)
	case FieldHomeAddress:
		return ValidateHomeAddress(value)
	}

	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Fields maps each validated field name to its current value.
func (u *User) Fields() map[string]string {
	return map[string]string{
		FieldName:         u.Name,
		FieldID:           u.ID,
		FieldPassword:     u.Password,
		FieldEmailAddress: u.EmailAddress,
		FieldHomeAddress:  u.HomeAddress,
	}
}

// Validate checks every validated field in ValidatedFields order and returns
// the first failure.
func (u *User) Validate() error {
	fields := u.Fields()
	for _, field := range ValidatedFields {
		if err := ValidateField(field, fields[field]); err != nil {
			return err
		}
	}

	return nil
}

// CheckPassword verifies password against the stored one. An empty password
// is reported as such before any comparison is made.
func (u *User) CheckPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(u.Password)) != 1 {
		return ErrIncorrectPassword
	}

	return nil
}
