// Package wizard implements the three-step reservation flow: dates and
// guests, personal info, payment. It validates each step before moving on,
// accumulates the validated values, derives pricing from the dates and
// keeps the in-progress record in a session-scoped store.
//
// A Wizard is driven from a single UI loop and is not safe for concurrent
// use.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/idilsaglam/hotelres/internal/metrics"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/pricing"
	"github.com/idilsaglam/hotelres/internal/store"
	"github.com/idilsaglam/hotelres/pkg/logging"
)

type Wizard struct {
	step      Step
	fields    Fields
	quote     pricing.Quote
	hasQuote  bool
	unitPrice float64
	roomID    string
	roomPrice float64

	idempotencyKey string
	keyDigest      string // digest of the fields the key was issued for
	confirmation   *model.Confirmation

	store   store.Store
	now     func() time.Time
	newKey  func() string
	logger  *logging.Logger
	metrics *metrics.Metrics
}

type Option func(*Wizard)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// WithUnitPrice sets the nightly rate used when no room price is known.
func WithUnitPrice(price float64) Option {
	return func(w *Wizard) {
		if price > 0 {
			w.unitPrice = price
		}
	}
}

// WithRoom books a specific room; its price wins over WithUnitPrice.
func WithRoom(room model.Room) Option {
	return func(w *Wizard) {
		w.roomID = room.ID
		w.roomPrice = room.Price
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Wizard) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Wizard) { w.metrics = m }
}

// WithKeyFunc replaces the idempotency key generator.
func WithKeyFunc(f func() string) Option {
	return func(w *Wizard) { w.newKey = f }
}

// New returns a wizard at StepDates with an empty record. Call Restore to
// pick up a previous session.
func New(st store.Store, opts ...Option) *Wizard {
	w := &Wizard{
		step:      StepDates,
		fields:    Fields{},
		unitPrice: pricing.DefaultUnitPrice,
		store:     st,
		now:       time.Now,
		newKey:    func() string { return uuid.NewString() },
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.roomPrice > 0 {
		w.unitPrice = w.roomPrice
	}
	if w.roomID != "" {
		w.fields[FieldRoomID] = w.roomID
	}
	return w
}

// Restore loads the record persisted by a previous session. A missing
// entry is not an error.
func (w *Wizard) Restore(ctx context.Context) error {
	b, err := w.store.Get(ctx, store.WizardKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore wizard: %w", err)
	}
	var saved Fields
	if err := json.Unmarshal(b, &saved); err != nil {
		return fmt.Errorf("restore wizard: json unmarshal: %w", err)
	}
	for k, v := range saved {
		if k == FieldRoomID && w.roomID != "" {
			continue
		}
		w.fields[k] = v
	}
	if id, ok := w.fields[FieldRoomID].(string); ok && w.roomID == "" {
		w.roomID = id
	}
	w.Recalculate(w.fields.String(FieldCheckIn), w.fields.String(FieldCheckOut))
	w.logger.Debug("wizard restored", "fields", len(saved))
	return nil
}

func (w *Wizard) Step() Step { return w.step }

// Fields returns a copy of the accumulated record.
func (w *Wizard) Fields() Fields { return w.fields.clone() }

func (w *Wizard) RoomID() string { return w.roomID }

func (w *Wizard) UnitPrice() float64 { return w.unitPrice }

// Quote is the last derived pricing. ok is false until a valid date pair
// has been seen.
func (w *Wizard) Quote() (pricing.Quote, bool) { return w.quote, w.hasQuote }

// Recalculate derives pricing from raw date inputs. When the pair is
// incomplete or out of order the previous quote is kept.
func (w *Wizard) Recalculate(checkIn, checkOut string) (pricing.Quote, bool) {
	if q, ok := pricing.CalculateStrings(checkIn, checkOut, w.unitPrice); ok {
		w.quote, w.hasQuote = q, true
	}
	return w.quote, w.hasQuote
}

// Defaults returns the initial input values: today, tomorrow and one guest,
// overlaid with anything restored.
func (w *Wizard) Defaults() Form {
	in, out := DefaultDates(w.now())
	form := Form{
		FieldCheckIn:  in.String(),
		FieldCheckOut: out.String(),
		FieldGuests:   "1",
	}
	for _, fields := range StepFields {
		for _, name := range fields {
			// the stored card number is only its last four digits
			if name == FieldCardNumber {
				continue
			}
			if v := w.fields.String(name); v != "" {
				form[name] = v
			}
		}
	}
	return form
}

// Advance validates the current step. On success the values are merged,
// the record is saved and the wizard moves one step forward, or to
// StepSubmitted from the last step. On failure nothing changes and a
// *StepError describes what to fix.
func (w *Wizard) Advance(ctx context.Context, form Form) (Step, error) {
	to, ok := next(w.step, eventNext)
	if !ok {
		return w.step, &ErrInvalidTransition{From: w.step, Event: string(eventNext)}
	}

	values, stepErr := w.validate(form)
	w.metrics.ObserveAdvance(w.step.String(), stepErr == nil)
	if stepErr != nil {
		w.logger.Debug("wizard step rejected", "step", w.step.String(), "error", stepErr.Fields.Error())
		return w.step, stepErr
	}

	for k, v := range values {
		w.fields[k] = v
	}
	if w.step == StepDates {
		w.mergeQuote()
	}
	if to == StepSubmitted {
		w.issueKey()
	}
	w.save(ctx)

	w.logger.Debug("wizard advanced", "from", w.step.String(), "to", to.String())
	w.step = to
	return w.step, nil
}

// issueKey keeps the idempotency key while the record is unchanged and
// issues a fresh one once any field differs from what the key was used for.
func (w *Wizard) issueKey() {
	digest := w.fields.digest()
	if w.idempotencyKey != "" && digest == w.keyDigest {
		return
	}
	if w.idempotencyKey != "" {
		w.logger.Debug("reservation changed, new idempotency key")
	}
	w.idempotencyKey = w.newKey()
	w.keyDigest = digest
}

// Retreat moves one step back. It is a no-op at StepDates and while a
// submission is pending.
func (w *Wizard) Retreat() Step {
	if to, ok := next(w.step, eventBack); ok {
		w.step = to
	}
	return w.step
}

// Submission is the payload for the booking backend. Resubmitting the same
// record after a failure reuses the idempotency key, so it cannot book
// twice; an edited record gets a new key.
func (w *Wizard) Submission() (model.Reservation, error) {
	if w.step != StepSubmitted || w.confirmation != nil {
		return model.Reservation{}, &ErrInvalidTransition{From: w.step, Event: string(eventSubmit)}
	}
	return model.Reservation{
		IdempotencyKey: w.idempotencyKey,
		RoomID:         w.roomID,
		Fields:         w.fields.clone(),
	}, nil
}

// SubmitFailed reopens the payment step after the backend rejected or
// could not be reached.
func (w *Wizard) SubmitFailed() Step {
	if w.confirmation != nil {
		return w.step
	}
	if to, ok := next(w.step, eventFailed); ok {
		w.step = to
	}
	return w.step
}

// Confirm records the backend's confirmation and drops the session entry.
func (w *Wizard) Confirm(ctx context.Context, c model.Confirmation) error {
	if w.step != StepSubmitted || w.confirmation != nil {
		return &ErrInvalidTransition{From: w.step, Event: string(eventConfirm)}
	}
	w.confirmation = &c
	if err := w.store.Delete(ctx, store.WizardKey); err != nil {
		w.logger.Warn("wizard session cleanup failed", "error", err)
	}
	w.logger.Info("reservation confirmed", "confirmation_id", c.ID)
	return nil
}

// Confirmation returns the recorded confirmation, if any.
func (w *Wizard) Confirmation() (model.Confirmation, bool) {
	if w.confirmation == nil {
		return model.Confirmation{}, false
	}
	return *w.confirmation, true
}

func (w *Wizard) mergeQuote() {
	if _, ok := w.Recalculate(w.fields.String(FieldCheckIn), w.fields.String(FieldCheckOut)); !ok {
		return
	}
	w.fields[FieldNights] = w.quote.Nights
	w.fields[FieldSubtotal] = pricing.Round2(w.quote.Subtotal)
	w.fields[FieldTaxes] = pricing.Round2(w.quote.Taxes)
	w.fields[FieldTotal] = pricing.Round2(w.quote.Total)
}

// save writes the record without payment secrets. Failures only leave a
// stale entry behind, so they are logged and swallowed.
func (w *Wizard) save(ctx context.Context) {
	b, err := json.Marshal(w.fields.redacted())
	if err != nil {
		w.logger.Warn("wizard save: json marshal", "error", err)
		return
	}
	if err := w.store.Set(ctx, store.WizardKey, b); err != nil {
		w.logger.Warn("wizard save failed", "error", err)
	}
}

// DefaultDates returns today and tomorrow in now's location.
func DefaultDates(now time.Time) (checkIn, checkOut model.Date) {
	in := model.NewDate(now)
	return in, in.AddDays(1)
}

// ClampCheckOut returns the earliest allowed check-out for checkIn and
// checkOut pushed up to it when it does not fall after checkIn.
func ClampCheckOut(checkIn, checkOut model.Date) (minOut, out model.Date) {
	minOut = checkIn.AddDays(1)
	if !checkOut.After(checkIn) {
		return minOut, minOut
	}
	return minOut, checkOut
}

// ClampCheckOutStrings applies ClampCheckOut to raw inputs. Unparseable
// check-in leaves check-out untouched.
func ClampCheckOutStrings(checkIn, checkOut string) string {
	in, err := model.ParseDate(checkIn)
	if err != nil {
		return checkOut
	}
	out, err := model.ParseDate(checkOut)
	if err != nil {
		out = model.Date{}
	}
	_, fixed := ClampCheckOut(in, out)
	if strings.TrimSpace(checkOut) != "" && fixed.Equal(out.Time) {
		return checkOut
	}
	return fixed.String()
}
