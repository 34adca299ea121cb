package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/store"
	"github.com/idilsaglam/hotelres/internal/validate"
	"github.com/idilsaglam/hotelres/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)

func newTestWizard(t *testing.T, st store.Store, opts ...Option) *Wizard {
	t.Helper()
	keys := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logging.Discard()),
		WithKeyFunc(func() string {
			keys++
			return "key-" + string(rune('0'+keys))
		}),
	}
	return New(st, append(base, opts...)...)
}

func datesForm() Form {
	return Form{FieldCheckIn: "2024-06-10", FieldCheckOut: "2024-06-13", FieldGuests: "2"}
}

func personalForm() Form {
	return Form{
		FieldFirstName: "Ada",
		FieldLastName:  "Lovelace",
		FieldEmail:     "ada@example.com",
		FieldPhone:     "(555) 123-4567",
		FieldNotes:     "late arrival",
	}
}

func paymentForm() Form {
	return Form{FieldCardNumber: "4111 1111 1111 1111", FieldCardExpiry: "12/27", FieldCardCVV: "123"}
}

// walk advances through every input step with valid forms.
func walk(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()
	for _, f := range []Form{datesForm(), personalForm(), paymentForm()} {
		_, err := w.Advance(ctx, f)
		require.NoError(t, err)
	}
	require.Equal(t, StepSubmitted, w.Step())
}

func TestNewStartsAtDates(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())

	assert.Equal(t, StepDates, w.Step())
	assert.Empty(t, w.Fields())
	_, ok := w.Quote()
	assert.False(t, ok)
}

func TestAdvanceDatesDerivesPricing(t *testing.T) {
	st := store.NewMemory()
	w := newTestWizard(t, st)

	step, err := w.Advance(context.Background(), datesForm())
	require.NoError(t, err)
	assert.Equal(t, StepPersonal, step)

	f := w.Fields()
	assert.Equal(t, "2024-06-10", f[FieldCheckIn])
	assert.Equal(t, "2024-06-13", f[FieldCheckOut])
	assert.Equal(t, 2, f[FieldGuests])
	assert.Equal(t, 3, f[FieldNights])
	assert.Equal(t, 750.0, f[FieldSubtotal])
	assert.Equal(t, 112.5, f[FieldTaxes])
	assert.Equal(t, 862.5, f[FieldTotal])

	raw, err := st.Get(context.Background(), store.WizardKey)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, "2024-06-13", saved[FieldCheckOut])
	assert.Equal(t, 862.5, saved[FieldTotal])
}

func TestAdvanceFailureLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		wantErr error
		banner  string
	}{
		{
			name:    "missing guests",
			form:    Form{FieldCheckIn: "2024-06-10", FieldCheckOut: "2024-06-13"},
			wantErr: validate.ErrMissingValue,
			banner:  genericStepMessage,
		},
		{
			name:    "check-out before check-in",
			form:    Form{FieldCheckIn: "2024-06-10", FieldCheckOut: "2024-06-10", FieldGuests: "1"},
			wantErr: validate.ErrDateOrder,
			banner:  "Check-out date must be after check-in date.",
		},
		{
			name:    "bad date",
			form:    Form{FieldCheckIn: "tomorrow", FieldCheckOut: "2024-06-10", FieldGuests: "1"},
			wantErr: validate.ErrInvalidDate,
			banner:  genericStepMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemory()
			w := newTestWizard(t, st)

			step, err := w.Advance(context.Background(), tt.form)

			assert.Equal(t, StepDates, step)
			assert.Equal(t, StepDates, w.Step())
			assert.Empty(t, w.Fields())
			assert.ErrorIs(t, err, tt.wantErr)

			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tt.banner, stepErr.Message)
			assert.Equal(t, StepDates, stepErr.Step)

			_, getErr := st.Get(context.Background(), store.WizardKey)
			assert.ErrorIs(t, getErr, store.ErrNotFound, "nothing persisted on failure")
		})
	}
}

func TestPersonalStepRejectsBadEmail(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	_, err := w.Advance(context.Background(), datesForm())
	require.NoError(t, err)

	form := personalForm()
	form[FieldEmail] = "not-an-email"
	step, err := w.Advance(context.Background(), form)

	assert.Equal(t, StepPersonal, step)
	assert.ErrorIs(t, err, validate.ErrInvalidEmail)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, map[string]string{FieldEmail: "Enter a valid email"}, stepErr.Fields.ByField())
	assert.NotContains(t, w.Fields(), FieldFirstName)
}

func TestPaymentStepChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Form)
		wantErr error
		banner  string
	}{
		{"short card", func(f Form) { f[FieldCardNumber] = "4111 1111 1111" }, validate.ErrInvalidCardNumber, "Invalid card number."},
		{"bad month", func(f Form) { f[FieldCardExpiry] = "13/27" }, validate.ErrInvalidExpiryMonth, "Invalid expiration month."},
		{"expired", func(f Form) { f[FieldCardExpiry] = "05/24" }, validate.ErrExpiredCard, "The card has expired."},
		{"cvv", func(f Form) { f[FieldCardCVV] = "12" }, validate.ErrInvalidCVV, "Invalid CVV."},
		{"missing cvv", func(f Form) { f[FieldCardCVV] = "" }, validate.ErrMissingValue, genericStepMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWizard(t, store.NewMemory())
			ctx := context.Background()
			_, err := w.Advance(ctx, datesForm())
			require.NoError(t, err)
			_, err = w.Advance(ctx, personalForm())
			require.NoError(t, err)

			form := paymentForm()
			tt.mutate(form)
			step, err := w.Advance(ctx, form)

			assert.Equal(t, StepPayment, step)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.banner, err.Error())
		})
	}
}

func TestExpiryInCurrentMonthIsAccepted(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	ctx := context.Background()
	_, _ = w.Advance(ctx, datesForm())
	_, _ = w.Advance(ctx, personalForm())

	form := paymentForm()
	form[FieldCardExpiry] = "06/24"
	step, err := w.Advance(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, StepSubmitted, step)
}

func TestRetreat(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	ctx := context.Background()

	assert.Equal(t, StepDates, w.Retreat(), "no-op on the first step")

	_, err := w.Advance(ctx, datesForm())
	require.NoError(t, err)
	_, err = w.Advance(ctx, personalForm())
	require.NoError(t, err)
	require.Equal(t, StepPayment, w.Step())

	assert.Equal(t, StepPersonal, w.Retreat())
	assert.Equal(t, StepDates, w.Retreat())
	assert.Equal(t, StepDates, w.Retreat())
	assert.Contains(t, w.Fields(), FieldEmail, "retreat keeps accumulated fields")
}

func TestAdvanceIncrementsByExactlyOne(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	ctx := context.Background()
	forms := []Form{datesForm(), personalForm(), paymentForm()}
	bad := []Form{{}, {FieldEmail: "x"}, {FieldCardNumber: "1"}}

	for i, f := range forms {
		before := w.Step()
		step, err := w.Advance(ctx, bad[i])
		require.Error(t, err)
		assert.Equal(t, before, step)

		step, err = w.Advance(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, before+1, step)
	}
	assert.Equal(t, StepSubmitted, w.Step())
}

func TestSubmittedIsFrozen(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	walk(t, w)

	_, err := w.Advance(context.Background(), paymentForm())
	var invalid *ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StepSubmitted, invalid.From)

	assert.Equal(t, StepSubmitted, w.Retreat())
}

func TestSubmissionLifecycle(t *testing.T) {
	st := store.NewMemory()
	w := newTestWizard(t, st, WithRoom(model.Room{ID: "deluxe", Price: 300}))
	ctx := context.Background()

	_, err := w.Submission()
	require.Error(t, err, "nothing to submit before the last step")

	walk(t, w)
	first, err := w.Submission()
	require.NoError(t, err)
	assert.Equal(t, "key-1", first.IdempotencyKey)
	assert.Equal(t, "deluxe", first.RoomID)
	assert.Equal(t, "4111 1111 1111 1111", first.Fields[FieldCardNumber])
	assert.Equal(t, 900.0, first.Fields[FieldSubtotal])

	assert.Equal(t, StepPayment, w.SubmitFailed())
	_, err = w.Advance(ctx, paymentForm())
	require.NoError(t, err)
	second, err := w.Submission()
	require.NoError(t, err)
	assert.Equal(t, first.IdempotencyKey, second.IdempotencyKey, "resubmission reuses the key")

	require.NoError(t, w.Confirm(ctx, model.Confirmation{ID: "conf-1", ReceivedAt: fixedNow}))
	c, ok := w.Confirmation()
	require.True(t, ok)
	assert.Equal(t, "conf-1", c.ID)

	_, err = st.Get(ctx, store.WizardKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "session entry dropped after confirmation")

	assert.Error(t, w.Confirm(ctx, c))
	_, err = w.Submission()
	assert.Error(t, err)
	assert.Equal(t, StepSubmitted, w.SubmitFailed(), "confirmed reservations stay submitted")
}

func TestEditAfterFailedSubmitIssuesNewKey(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	ctx := context.Background()

	walk(t, w)
	first, err := w.Submission()
	require.NoError(t, err)
	require.Equal(t, "key-1", first.IdempotencyKey)

	w.SubmitFailed()
	w.Retreat()
	assert.Equal(t, StepDates, w.Retreat())

	changed := Form{FieldCheckIn: "2024-09-01", FieldCheckOut: "2024-09-08", FieldGuests: "4"}
	for _, f := range []Form{changed, personalForm(), paymentForm()} {
		_, err := w.Advance(ctx, f)
		require.NoError(t, err)
	}
	second, err := w.Submission()
	require.NoError(t, err)
	assert.Equal(t, "key-2", second.IdempotencyKey, "an edited stay must not reuse the first key")
	assert.Equal(t, "2024-09-01", second.Fields[FieldCheckIn])
	assert.Equal(t, 2012.5, second.Fields[FieldTotal])

	// walking back without changing anything keeps the key
	w.SubmitFailed()
	w.Retreat()
	for _, f := range []Form{personalForm(), paymentForm()} {
		_, err := w.Advance(ctx, f)
		require.NoError(t, err)
	}
	third, err := w.Submission()
	require.NoError(t, err)
	assert.Equal(t, "key-2", third.IdempotencyKey)
}

func TestPersistedRecordOmitsCardSecrets(t *testing.T) {
	st := store.NewMemory()
	w := newTestWizard(t, st)
	walk(t, w)

	raw, err := st.Get(context.Background(), store.WizardKey)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(raw, &saved))

	assert.Equal(t, "1111", saved[FieldCardNumber])
	assert.NotContains(t, saved, FieldCardCVV)
	assert.Equal(t, "12/27", saved[FieldCardExpiry])
	assert.Equal(t, "Ada", saved[FieldFirstName])
}

func TestRestore(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	first := newTestWizard(t, st, WithRoom(model.Room{ID: "suite", Price: 400}))
	_, err := first.Advance(ctx, datesForm())
	require.NoError(t, err)
	_, err = first.Advance(ctx, personalForm())
	require.NoError(t, err)

	w := newTestWizard(t, st)
	require.NoError(t, w.Restore(ctx))

	assert.Equal(t, StepDates, w.Step(), "restoring does not skip steps")
	assert.Equal(t, "suite", w.RoomID())
	defaults := w.Defaults()
	assert.Equal(t, "2024-06-10", defaults[FieldCheckIn])
	assert.Equal(t, "2", defaults[FieldGuests])
	assert.Equal(t, "ada@example.com", defaults[FieldEmail])
	q, ok := w.Quote()
	require.True(t, ok)
	assert.Equal(t, 3, q.Nights)
}

func TestRestoreMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	w := newTestWizard(t, st)
	require.NoError(t, w.Restore(ctx))

	require.NoError(t, st.Set(ctx, store.WizardKey, []byte("{nope")))
	err := newTestWizard(t, st).Restore(ctx)
	assert.ErrorContains(t, err, "json unmarshal")
}

type failingStore struct{ store.Store }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSaveFailureDoesNotBlockAdvance(t *testing.T) {
	w := newTestWizard(t, failingStore{store.NewMemory()})

	step, err := w.Advance(context.Background(), datesForm())
	require.NoError(t, err)
	assert.Equal(t, StepPersonal, step)
}

func TestDefaultsAndQuoteFallback(t *testing.T) {
	w := newTestWizard(t, store.NewMemory())
	form := w.Defaults()
	assert.Equal(t, "2024-06-01", form[FieldCheckIn])
	assert.Equal(t, "2024-06-02", form[FieldCheckOut])
	assert.Equal(t, "1", form[FieldGuests])

	q, ok := w.Recalculate(form[FieldCheckIn], form[FieldCheckOut])
	require.True(t, ok)
	assert.Equal(t, 250.0, q.Subtotal)

	q, ok = w.Recalculate("2024-06-05", "2024-06-01")
	require.True(t, ok, "previous quote is kept")
	assert.Equal(t, 1, q.Nights)
}

func TestUnitPriceSelection(t *testing.T) {
	st := store.NewMemory()
	assert.Equal(t, 250.0, newTestWizard(t, st).UnitPrice())
	assert.Equal(t, 180.0, newTestWizard(t, st, WithUnitPrice(180)).UnitPrice())
	assert.Equal(t, 320.0, newTestWizard(t, st,
		WithRoom(model.Room{ID: "deluxe", Price: 320}),
		WithUnitPrice(180),
	).UnitPrice())
}

func TestClampCheckOut(t *testing.T) {
	in, _ := model.ParseDate("2024-06-10")

	minOut, out := ClampCheckOut(in, in.AddDays(-3))
	assert.Equal(t, "2024-06-11", minOut.String())
	assert.Equal(t, "2024-06-11", out.String())

	_, out = ClampCheckOut(in, in.AddDays(4))
	assert.Equal(t, "2024-06-14", out.String())

	assert.Equal(t, "2024-06-11", ClampCheckOutStrings("2024-06-10", "2024-06-09"))
	assert.Equal(t, "2024-06-11", ClampCheckOutStrings("2024-06-10", ""))
	assert.Equal(t, "2024-06-20", ClampCheckOutStrings("2024-06-10", "2024-06-20"))
	assert.Equal(t, "junk", ClampCheckOutStrings("not a date", "junk"))
}

func TestDefaultDates(t *testing.T) {
	in, out := DefaultDates(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-12-31", in.String())
	assert.Equal(t, "2025-01-01", out.String())
}
