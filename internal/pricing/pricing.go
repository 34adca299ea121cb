// Package pricing derives stay pricing from dates and a nightly rate.
package pricing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/idilsaglam/hotelres/internal/model"
)

const (
	// TaxRate applied on top of the subtotal.
	TaxRate = 0.15
	// DefaultUnitPrice is the nightly rate used when no room price is known.
	DefaultUnitPrice = 250.0
)

// Quote is the derived price of a stay.
type Quote struct {
	Nights   int     `json:"nights"`
	Subtotal float64 `json:"subtotal"`
	Taxes    float64 `json:"taxes"`
	Total    float64 `json:"total"`
}

// Calculate prices a stay. ok is false when checkOut is not after checkIn,
// in which case callers keep whatever they showed before.
func Calculate(checkIn, checkOut model.Date, unitPrice float64) (q Quote, ok bool) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return Quote{}, false
	}
	nights := checkIn.DaysUntil(checkOut)
	if nights <= 0 {
		return Quote{}, false
	}
	subtotal := unitPrice * float64(nights)
	taxes := subtotal * TaxRate
	return Quote{
		Nights:   nights,
		Subtotal: subtotal,
		Taxes:    taxes,
		Total:    subtotal + taxes,
	}, true
}

// CalculateStrings is Calculate over raw YYYY-MM-DD input values.
func CalculateStrings(checkIn, checkOut string, unitPrice float64) (Quote, bool) {
	in, err := model.ParseDate(checkIn)
	if err != nil {
		return Quote{}, false
	}
	out, err := model.ParseDate(checkOut)
	if err != nil {
		return Quote{}, false
	}
	return Calculate(in, out, unitPrice)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMoney renders v as dollars with exactly two decimals.
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", Round2(v))
}

var nonPrice = regexp.MustCompile(`[^0-9.]`)

// ParsePrice extracts a price from display text such as "$250.00 / night".
// Unparseable or non-positive text yields fallback.
func ParsePrice(text string, fallback float64) float64 {
	v, err := strconv.ParseFloat(nonPrice.ReplaceAllString(text, ""), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
