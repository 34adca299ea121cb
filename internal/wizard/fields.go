package wizard

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"strconv"

	"github.com/idilsaglam/hotelres/internal/validate"
)

// Field names accumulated by the wizard.
const (
	FieldCheckIn    = "checkIn"
	FieldCheckOut   = "checkOut"
	FieldGuests     = "guests"
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldNotes      = "notes"
	FieldCardNumber = "cardNumber"
	FieldCardExpiry = "cardExpiry"
	FieldCardCVV    = "cardCvv"
	FieldRoomID     = "roomId"

	FieldNights   = "nights"
	FieldSubtotal = "subtotal"
	FieldTaxes    = "taxes"
	FieldTotal    = "total"
)

// StepFields lists the inputs each step collects, in display order.
var StepFields = map[Step][]string{
	StepDates:    {FieldCheckIn, FieldCheckOut, FieldGuests},
	StepPersonal: {FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldNotes},
	StepPayment:  {FieldCardNumber, FieldCardExpiry, FieldCardCVV},
}

// Form is the raw input of one step, keyed by field name.
type Form map[string]string

// Fields is the accumulated wizard record. Values are strings or numbers.
type Fields map[string]any

// String renders a value for an input box; numbers lose trailing zeros.
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (f Fields) clone() Fields {
	return maps.Clone(f)
}

// redacted is the copy written to the session store: the card number is
// cut to its last four digits and the CVV is dropped.
func (f Fields) redacted() Fields {
	out := f.clone()
	delete(out, FieldCardCVV)
	if card := f.String(FieldCardNumber); card != "" {
		digits := validate.Digits(card)
		if len(digits) > 4 {
			digits = digits[len(digits)-4:]
		}
		out[FieldCardNumber] = digits
	}
	return out
}

// digest identifies the record's content. encoding/json sorts map keys,
// so equal records hash equally.
func (f Fields) digest() string {
	b, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
