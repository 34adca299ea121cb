package validate

import (
	"errors"
	"strings"
)

// Error taxonomy shared by the form validator and the wizard steps.
var (
	ErrMissingValue       = errors.New("missing value")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPhone       = errors.New("invalid phone")
	ErrInvalidCardNumber  = errors.New("invalid card number")
	ErrInvalidExpiryMonth = errors.New("invalid expiry month")
	ErrInvalidExpiry      = errors.New("invalid expiry, want MM/YY")
	ErrExpiredCard        = errors.New("card expired")
	ErrInvalidCVV         = errors.New("invalid cvv")
	ErrDateOrder          = errors.New("check-out must be after check-in")
	ErrInvalidDate        = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidGuestCount  = errors.New("invalid guest count")
)

var messages = map[error]string{
	ErrMissingValue:       "This field is required",
	ErrInvalidEmail:       "Enter a valid email",
	ErrInvalidPhone:       "Enter a valid phone number",
	ErrInvalidCardNumber:  "Invalid card number",
	ErrInvalidExpiryMonth: "Invalid expiration month",
	ErrInvalidExpiry:      "Use MM/YY",
	ErrExpiredCard:        "The card has expired",
	ErrInvalidCVV:         "Invalid CVV",
	ErrDateOrder:          "Check-out date must be after check-in date",
	ErrInvalidDate:        "Use YYYY-MM-DD",
	ErrInvalidGuestCount:  "Enter at least one guest",
}

// Message returns the user-facing text for err, falling back to err.Error().
func Message(err error) string {
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// FieldError ties a validation failure to the field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e FieldError) Unwrap() error { return e.Err }

// Message is the inline annotation shown next to the field.
func (e FieldError) Message() string { return Message(e.Err) }

// Errors is the aggregate result of validating a form. A nil Errors means
// the form is valid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, fe := range e {
		out = append(out, fe)
	}
	return out
}

// For returns the first error recorded for field.
func (e Errors) For(field string) (FieldError, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe, true
		}
	}
	return FieldError{}, false
}

// ByField indexes inline messages by field name.
func (e Errors) ByField() map[string]string {
	out := make(map[string]string, len(e))
	for _, fe := range e {
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message()
		}
	}
	return out
}
