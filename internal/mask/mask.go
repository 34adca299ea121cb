// Package mask holds the keystroke-time formatters applied to phone and
// payment inputs. Every mask is a pure string transform.
package mask

import (
	"regexp"
	"strings"
)

const (
	maxPhoneDigits = 15
	maxCardDigits  = 16
	maxCVVDigits   = 4
)

var nonDigit = regexp.MustCompile(`\D`)

func digits(s string, limit int) string {
	d := nonDigit.ReplaceAllString(s, "")
	if limit > 0 && len(d) > limit {
		d = d[:limit]
	}
	return d
}

// Phone formats as (XXX) XXX-XXXX, with " xEXT" for digits past the tenth.
// Fewer than ten digits are left bare.
func Phone(s string) string {
	d := digits(s, maxPhoneDigits)
	if len(d) < 10 {
		return d
	}
	out := "(" + d[:3] + ") " + d[3:6] + "-" + d[6:10]
	if len(d) > 10 {
		out += " x" + d[10:]
	}
	return out
}

// CardNumber groups up to 16 digits in blocks of four.
func CardNumber(s string) string {
	d := digits(s, maxCardDigits)
	var b strings.Builder
	for i := 0; i < len(d); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := min(i+4, len(d))
		b.WriteString(d[i:end])
	}
	return b.String()
}

// Expiry inserts a slash once two digits are typed: "1226" -> "12/26".
func Expiry(s string) string {
	d := digits(s, 4)
	if len(d) < 2 {
		return d
	}
	return d[:2] + "/" + d[2:]
}

// CVV keeps at most four digits.
func CVV(s string) string {
	return digits(s, maxCVVDigits)
}

// Func is a mask applied to an input's value on every change.
type Func func(string) string

// ByName resolves the masks the CLI exposes.
func ByName(name string) (Func, bool) {
	switch strings.ToLower(name) {
	case "phone", "tel":
		return Phone, true
	case "card", "card-number":
		return CardNumber, true
	case "expiry", "card-expiry":
		return Expiry, true
	case "cvv", "card-cvv":
		return CVV, true
	}
	return nil, false
}
