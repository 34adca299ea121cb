// Package validate holds the form checks used by the reservation wizard
// and any other form: required values, email and phone shapes, and the
// superficial card checks (no Luhn).
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/hotelres/internal/model"
)

// Kind is the semantic type of a form field.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindPhone
)

// Field is one required input of a form.
type Field struct {
	Name  string
	Kind  Kind
	Value string
}

const minPhoneDigits = 10

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// Form validates every required field and returns nil when all pass.
func Form(fields ...Field) Errors {
	var errs Errors
	for _, f := range fields {
		if err := check(f); err != nil {
			errs = append(errs, FieldError{Field: f.Name, Err: err})
		}
	}
	return errs
}

func check(f Field) error {
	if err := Required(f.Value); err != nil {
		return err
	}
	switch f.Kind {
	case KindEmail:
		return Email(f.Value)
	case KindPhone:
		return Phone(f.Value)
	}
	return nil
}

// Digits strips every non-digit character.
func Digits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

func Required(v string) error {
	if strings.TrimSpace(v) == "" {
		return ErrMissingValue
	}
	return nil
}

func Email(v string) error {
	if !emailPattern.MatchString(v) {
		return ErrInvalidEmail
	}
	return nil
}

func Phone(v string) error {
	if len(Digits(v)) < minPhoneDigits {
		return ErrInvalidPhone
	}
	return nil
}

// CardNumber accepts 15 to 19 digits once separators are removed.
func CardNumber(v string) error {
	n := len(Digits(v))
	if n < 15 || n > 19 {
		return ErrInvalidCardNumber
	}
	return nil
}

// Expiry checks an MM/YY value against now. The year is compared as two
// digits against now's two-digit year, so "01/00" counts as expired in
// 2099 and cards from a previous century are not caught.
func Expiry(v string, now time.Time) error {
	mm, yy, ok := strings.Cut(strings.TrimSpace(v), "/")
	if !ok {
		return ErrInvalidExpiry
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return ErrInvalidExpiryMonth
	}
	year, err := strconv.Atoi(yy)
	if err != nil || len(yy) != 2 {
		return ErrInvalidExpiry
	}
	curYear := now.Year() % 100
	curMonth := int(now.Month())
	if year < curYear || (year == curYear && month < curMonth) {
		return ErrExpiredCard
	}
	return nil
}

func CVV(v string) error {
	n := len(Digits(v))
	if n < 3 || n > 4 {
		return ErrInvalidCVV
	}
	return nil
}

// DateOrder requires checkOut strictly after checkIn.
func DateOrder(checkIn, checkOut model.Date) error {
	if !checkOut.After(checkIn) {
		return ErrDateOrder
	}
	return nil
}

// Date parses a required YYYY-MM-DD value.
func Date(v string) (model.Date, error) {
	if err := Required(v); err != nil {
		return model.Date{}, err
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return model.Date{}, ErrInvalidDate
	}
	return d, nil
}

// Guests parses a required positive guest count.
func Guests(v string) (int, error) {
	if err := Required(v); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, ErrInvalidGuestCount
	}
	return n, nil
}
