package wizard

import (
	"errors"
	"strings"

	"github.com/idilsaglam/hotelres/internal/validate"
)

const genericStepMessage = "Please complete all required fields correctly."

// StepError is returned by Advance when the current step does not validate.
// Message is the banner for the whole step; Fields carries the inline
// annotations.
type StepError struct {
	Step    Step
	Message string
	Fields  validate.Errors
}

func (e *StepError) Error() string { return e.Message }

func (e *StepError) Unwrap() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e.Fields
}

// banner order: a missing value always gets the generic message.
var specificBanners = []struct {
	err error
	msg string
}{
	{validate.ErrDateOrder, "Check-out date must be after check-in date."},
	{validate.ErrInvalidCardNumber, "Invalid card number."},
	{validate.ErrInvalidExpiryMonth, "Invalid expiration month."},
	{validate.ErrInvalidExpiry, "Expiration must be MM/YY."},
	{validate.ErrExpiredCard, "The card has expired."},
	{validate.ErrInvalidCVV, "Invalid CVV."},
}

func newStepError(step Step, errs validate.Errors) *StepError {
	msg := genericStepMessage
	if !errors.Is(errs, validate.ErrMissingValue) {
		for _, b := range specificBanners {
			if errors.Is(errs, b.err) {
				msg = b.msg
				break
			}
		}
	}
	return &StepError{Step: step, Message: msg, Fields: errs}
}

func (w *Wizard) validate(form Form) (Fields, *StepError) {
	var (
		values Fields
		errs   validate.Errors
	)
	switch w.step {
	case StepDates:
		values, errs = validateDates(form)
	case StepPersonal:
		values, errs = validatePersonal(form)
	case StepPayment:
		values, errs = w.validatePayment(form)
	}
	if len(errs) > 0 {
		return nil, newStepError(w.step, errs)
	}
	return values, nil
}

func validateDates(form Form) (Fields, validate.Errors) {
	var errs validate.Errors
	fail := func(field string, err error) {
		errs = append(errs, validate.FieldError{Field: field, Err: err})
	}

	in, err := validate.Date(form[FieldCheckIn])
	if err != nil {
		fail(FieldCheckIn, err)
	}
	out, err := validate.Date(form[FieldCheckOut])
	if err != nil {
		fail(FieldCheckOut, err)
	}
	guests, err := validate.Guests(form[FieldGuests])
	if err != nil {
		fail(FieldGuests, err)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if err := validate.DateOrder(in, out); err != nil {
		fail(FieldCheckOut, err)
		return nil, errs
	}
	return Fields{
		FieldCheckIn:  in.String(),
		FieldCheckOut: out.String(),
		FieldGuests:   guests,
	}, nil
}

func validatePersonal(form Form) (Fields, validate.Errors) {
	errs := validate.Form(
		validate.Field{Name: FieldFirstName, Value: form[FieldFirstName]},
		validate.Field{Name: FieldLastName, Value: form[FieldLastName]},
		validate.Field{Name: FieldEmail, Kind: validate.KindEmail, Value: form[FieldEmail]},
		validate.Field{Name: FieldPhone, Kind: validate.KindPhone, Value: form[FieldPhone]},
	)
	if errs != nil {
		return nil, errs
	}
	return Fields{
		FieldFirstName: strings.TrimSpace(form[FieldFirstName]),
		FieldLastName:  strings.TrimSpace(form[FieldLastName]),
		FieldEmail:     strings.TrimSpace(form[FieldEmail]),
		FieldPhone:     strings.TrimSpace(form[FieldPhone]),
		FieldNotes:     strings.TrimSpace(form[FieldNotes]),
	}, nil
}

func (w *Wizard) validatePayment(form Form) (Fields, validate.Errors) {
	errs := validate.Form(
		validate.Field{Name: FieldCardNumber, Value: form[FieldCardNumber]},
		validate.Field{Name: FieldCardExpiry, Value: form[FieldCardExpiry]},
		validate.Field{Name: FieldCardCVV, Value: form[FieldCardCVV]},
	)
	if errs != nil {
		return nil, errs
	}
	if err := validate.CardNumber(form[FieldCardNumber]); err != nil {
		errs = append(errs, validate.FieldError{Field: FieldCardNumber, Err: err})
	}
	if err := validate.Expiry(form[FieldCardExpiry], w.now()); err != nil {
		errs = append(errs, validate.FieldError{Field: FieldCardExpiry, Err: err})
	}
	if err := validate.CVV(form[FieldCardCVV]); err != nil {
		errs = append(errs, validate.FieldError{Field: FieldCardCVV, Err: err})
	}
	if errs != nil {
		return nil, errs
	}
	return Fields{
		FieldCardNumber: strings.TrimSpace(form[FieldCardNumber]),
		FieldCardExpiry: strings.TrimSpace(form[FieldCardExpiry]),
		FieldCardCVV:    strings.TrimSpace(form[FieldCardCVV]),
	}, nil
}
