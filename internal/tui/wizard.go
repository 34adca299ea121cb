// Package tui holds the Bubble Tea screens: the reservation wizard and the
// cart browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/idilsaglam/hotelres/internal/booking"
	"github.com/idilsaglam/hotelres/internal/cart"
	"github.com/idilsaglam/hotelres/internal/mask"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/notify"
	"github.com/idilsaglam/hotelres/internal/pricing"
	"github.com/idilsaglam/hotelres/internal/ui"
	"github.com/idilsaglam/hotelres/internal/validate"
	"github.com/idilsaglam/hotelres/internal/wizard"
	"github.com/idilsaglam/hotelres/pkg/logging"
)

// BannerTimeout is how long a step error banner stays up.
const BannerTimeout = 5 * time.Second

var fieldLabels = map[string]string{
	wizard.FieldCheckIn:    "Check-in",
	wizard.FieldCheckOut:   "Check-out",
	wizard.FieldGuests:     "Guests",
	wizard.FieldFirstName:  "First name",
	wizard.FieldLastName:   "Last name",
	wizard.FieldEmail:      "Email",
	wizard.FieldPhone:      "Phone",
	wizard.FieldNotes:      "Special requests",
	wizard.FieldCardNumber: "Card number",
	wizard.FieldCardExpiry: "Expiry",
	wizard.FieldCardCVV:    "CVV",
}

var fieldPlaceholders = map[string]string{
	wizard.FieldCheckIn:    "YYYY-MM-DD",
	wizard.FieldCheckOut:   "YYYY-MM-DD",
	wizard.FieldGuests:     "1",
	wizard.FieldEmail:      "you@example.com",
	wizard.FieldPhone:      "(555) 123-4567",
	wizard.FieldNotes:      "optional",
	wizard.FieldCardNumber: "4111 1111 1111 1111",
	wizard.FieldCardExpiry: "MM/YY",
	wizard.FieldCardCVV:    "123",
}

// masks run on every insertion into the field.
var fieldMasks = map[string]mask.Func{
	wizard.FieldPhone:      mask.Phone,
	wizard.FieldCardNumber: mask.CardNumber,
	wizard.FieldCardExpiry: mask.Expiry,
	wizard.FieldCardCVV:    mask.CVV,
}

type submitResultMsg struct {
	conf *model.Confirmation
	err  error
}

type bannerTimeoutMsg struct{ seq int }

// WizardModel drives a wizard.Wizard from the keyboard.
type WizardModel struct {
	ctx       context.Context
	wiz       *wizard.Wizard
	submitter booking.Submitter
	cart      *cart.Cart
	logger    *logging.Logger

	inputs    map[string]*textinput.Model
	focus     int
	fieldErrs map[string]string

	banner        string
	bannerSeq     int
	bannerTimeout time.Duration

	busy     bool
	quitting bool

	spinner spinner.Model
	notes   notify.Center
	help    help.Model
	keys    wizardKeys
}

type WizardOption func(*WizardModel)

// WithCart enables saving the current stay to the cart and shows its badge.
func WithCart(c *cart.Cart) WizardOption {
	return func(m *WizardModel) { m.cart = c }
}

func WithLogger(l *logging.Logger) WizardOption {
	return func(m *WizardModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithBannerTimeout overrides BannerTimeout.
func WithBannerTimeout(d time.Duration) WizardOption {
	return func(m *WizardModel) { m.bannerTimeout = d }
}

// WithNotifications replaces the notification center, e.g. to shorten its
// phases.
func WithNotifications(c notify.Center) WizardOption {
	return func(m *WizardModel) { m.notes = c }
}

func NewWizardModel(ctx context.Context, w *wizard.Wizard, s booking.Submitter, opts ...WizardOption) *WizardModel {
	m := &WizardModel{
		ctx:           ctx,
		wiz:           w,
		submitter:     s,
		logger:        logging.Default(),
		inputs:        make(map[string]*textinput.Model),
		bannerTimeout: BannerTimeout,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		notes:         notify.New(),
		help:          help.New(),
		keys:          newWizardKeys(),
	}
	for _, opt := range opts {
		opt(m)
	}

	defaults := w.Defaults()
	for _, names := range wizard.StepFields {
		for _, name := range names {
			ti := textinput.New()
			ti.Prompt = ""
			ti.Placeholder = fieldPlaceholders[name]
			ti.CharLimit = 64
			ti.SetValue(defaults[name])
			if name == wizard.FieldCardCVV {
				ti.EchoMode = textinput.EchoPassword
			}
			m.inputs[name] = &ti
		}
	}
	w.Recalculate(defaults[wizard.FieldCheckIn], defaults[wizard.FieldCheckOut])
	m.setFocus(0)
	return m
}

func (m *WizardModel) Init() tea.Cmd { return textinput.Blink }

// Confirmation is set once the booking has been confirmed.
func (m *WizardModel) Confirmation() (model.Confirmation, bool) {
	return m.wiz.Confirmation()
}

func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case notify.PhaseMsg:
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		return m, cmd

	case bannerTimeoutMsg:
		if msg.seq == m.bannerSeq {
			m.banner = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitResultMsg:
		return m, m.finishSubmit(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if in := m.focused(); in != nil {
		updated, cmd := in.Update(msg)
		*in = updated
		return m, cmd
	}
	return m, nil
}

func (m *WizardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return tea.Quit
	}
	if _, done := m.wiz.Confirmation(); done {
		if key.Matches(msg, m.keys.Advance, m.keys.Back) || msg.String() == "q" {
			m.quitting = true
			return tea.Quit
		}
		return nil
	}
	if m.busy {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m.setFocus(m.focus + 1)
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus(m.focus - 1)
	case key.Matches(msg, m.keys.Advance):
		return m.advance()
	case key.Matches(msg, m.keys.Back):
		if m.wiz.Step() == wizard.StepDates {
			m.quitting = true
			return tea.Quit
		}
		m.wiz.Retreat()
		m.fieldErrs = nil
		m.banner = ""
		return m.setFocus(0)
	case key.Matches(msg, m.keys.SaveToCart):
		return m.saveToCart()
	}
	return m.edit(msg)
}

// edit forwards a key to the focused input, then masks it and keeps the
// date pair and the price summary consistent.
func (m *WizardModel) edit(msg tea.KeyMsg) tea.Cmd {
	name := m.focusedName()
	in := m.focused()
	if in == nil {
		return nil
	}
	before := in.Value()
	updated, cmd := in.Update(msg)
	*in = updated

	if f, ok := fieldMasks[name]; ok && in.Value() != before {
		remask(in, f)
	}

	switch name {
	case wizard.FieldCheckIn:
		out := m.inputs[wizard.FieldCheckOut]
		if clamped := wizard.ClampCheckOutStrings(in.Value(), out.Value()); clamped != out.Value() {
			out.SetValue(clamped)
		}
		fallthrough
	case wizard.FieldCheckOut:
		m.wiz.Recalculate(m.value(wizard.FieldCheckIn), m.value(wizard.FieldCheckOut))
	}
	return cmd
}

// remask reformats the input and keeps the cursor after the same number
// of digits it followed before.
func remask(in *textinput.Model, f mask.Func) {
	raw := []rune(in.Value())
	masked := f(string(raw))
	if masked == string(raw) {
		return
	}
	cur := min(in.Position(), len(raw))
	atEnd := cur == len(raw)
	digits := countDigits(raw[:cur])
	in.SetValue(masked)
	if atEnd {
		in.CursorEnd()
		return
	}
	pos := 0
	for i, r := range []rune(masked) {
		if digits == 0 {
			break
		}
		if unicode.IsDigit(r) {
			digits--
		}
		pos = i + 1
	}
	in.SetCursor(pos)
}

func countDigits(rs []rune) int {
	n := 0
	for _, r := range rs {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func (m *WizardModel) advance() tea.Cmd {
	step, err := m.wiz.Advance(m.ctx, m.form())
	if err != nil {
		var stepErr *wizard.StepError
		if errors.As(err, &stepErr) {
			m.fieldErrs = stepErr.Fields.ByField()
			return m.showBanner(stepErr.Message)
		}
		return m.showBanner(err.Error())
	}

	m.fieldErrs = nil
	m.banner = ""
	if step == wizard.StepSubmitted {
		return m.submit()
	}
	return m.setFocus(0)
}

func (m *WizardModel) submit() tea.Cmd {
	res, err := m.wiz.Submission()
	if err != nil {
		return m.showBanner(err.Error())
	}
	m.busy = true
	m.logger.Info("submitting reservation", "room_id", res.RoomID)

	ctx, submitter := m.ctx, m.submitter
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		conf, err := submitter.Submit(ctx, res)
		return submitResultMsg{conf: conf, err: err}
	})
}

func (m *WizardModel) finishSubmit(msg submitResultMsg) tea.Cmd {
	m.busy = false
	var cmd tea.Cmd

	if msg.err != nil {
		m.wiz.SubmitFailed()
		m.logger.Warn("reservation submit failed", "error", msg.err)
		text := "Connection error. Please try again."
		var rejected *booking.RejectedError
		if errors.As(msg.err, &rejected) {
			text = "Reservation rejected"
			if rejected.Message != "" {
				text += ": " + rejected.Message
			}
		}
		m.notes, cmd = m.notes.Push(text, notify.Error)
		return tea.Batch(cmd, m.showBanner(text), m.setFocus(0))
	}

	if err := m.wiz.Confirm(m.ctx, *msg.conf); err != nil {
		m.logger.Error("confirm reservation", "error", err)
		return m.showBanner(err.Error())
	}
	m.notes, cmd = m.notes.Push("Reservation confirmed!", notify.Success)
	return cmd
}

func (m *WizardModel) saveToCart() tea.Cmd {
	var cmd tea.Cmd
	if m.cart == nil {
		return nil
	}
	roomID := m.wiz.RoomID()
	in, errIn := validate.Date(m.value(wizard.FieldCheckIn))
	out, errOut := validate.Date(m.value(wizard.FieldCheckOut))
	guests, errGuests := validate.Guests(m.value(wizard.FieldGuests))

	switch {
	case roomID == "":
		m.notes, cmd = m.notes.Push("Select a room before saving to the cart", notify.Error)
	case errIn != nil || errOut != nil || errGuests != nil || validate.DateOrder(in, out) != nil:
		m.notes, cmd = m.notes.Push("Enter valid dates and guests first", notify.Error)
	default:
		if err := m.cart.Add(m.ctx, roomID, in, out, guests); err != nil {
			m.logger.Warn("cart add failed", "error", err)
			m.notes, cmd = m.notes.Push("Could not save the cart", notify.Error)
		} else {
			m.notes, cmd = m.notes.Push("Added to cart", notify.Success)
		}
	}
	return cmd
}

func (m *WizardModel) showBanner(text string) tea.Cmd {
	m.banner = text
	m.bannerSeq++
	seq := m.bannerSeq
	return tea.Tick(m.bannerTimeout, func(time.Time) tea.Msg {
		return bannerTimeoutMsg{seq: seq}
	})
}

func (m *WizardModel) stepFields() []string {
	return wizard.StepFields[m.wiz.Step()]
}

func (m *WizardModel) focusedName() string {
	names := m.stepFields()
	if len(names) == 0 {
		return ""
	}
	return names[m.focus]
}

func (m *WizardModel) focused() *textinput.Model {
	return m.inputs[m.focusedName()]
}

func (m *WizardModel) setFocus(i int) tea.Cmd {
	names := m.stepFields()
	if len(names) == 0 {
		return nil
	}
	i = (i%len(names) + len(names)) % len(names)
	m.focus = i
	for _, in := range m.inputs {
		in.Blur()
	}
	return m.inputs[names[i]].Focus()
}

func (m *WizardModel) value(name string) string {
	if in, ok := m.inputs[name]; ok {
		return in.Value()
	}
	return ""
}

func (m *WizardModel) form() wizard.Form {
	form := wizard.Form{}
	for _, name := range m.stepFields() {
		form[name] = m.value(name)
	}
	return form
}

func (m *WizardModel) View() string {
	if m.quitting {
		return ""
	}
	t := ui.Current()

	header := t.Title.Render("Hotel reservation")
	if room := m.wiz.RoomID(); room != "" {
		header += "  " + t.Muted.Render("room "+room)
	}
	if m.cart != nil {
		if badge := ui.Badge(m.cart.Count()); badge != "" {
			header += "  " + t.Muted.Render("cart") + " " + badge
		}
	}
	lines := []string{header}

	if c, ok := m.wiz.Confirmation(); ok {
		lines = append(lines, m.confirmationLines(c)...)
		return m.frame(lines)
	}

	titles := make([]string, 0, wizard.TotalSteps)
	for s := wizard.StepDates; s <= wizard.StepPayment; s++ {
		titles = append(titles, s.Title())
	}
	lines = append(lines, ui.StepIndicator(titles, int(m.wiz.Step())), "")

	if q, ok := m.wiz.Quote(); ok {
		lines = append(lines, t.Accent.Render(quoteLine(q))+"  "+t.Muted.Render(guestsLabel(m.value(wizard.FieldGuests))), "")
	}

	if m.busy {
		lines = append(lines, m.spinner.View()+" Processing...")
	} else {
		lines = append(lines, m.inputLines()...)
	}

	if m.banner != "" {
		lines = append(lines, "", t.Error.Render(m.banner))
	}
	lines = append(lines, "", m.help.View(m.keys))
	return m.frame(lines)
}

func (m *WizardModel) frame(lines []string) string {
	out := ui.PanelString(lines)
	if n := m.notes.View(); n != "" {
		out += "\n" + n
	}
	return out
}

func (m *WizardModel) inputLines() []string {
	t := ui.Current()
	labelStyle := lipgloss.NewStyle().Width(18)
	var lines []string
	for i, name := range m.stepFields() {
		label := labelStyle.Render(fieldLabels[name])
		if i == m.focus {
			label = t.Selected.Render(label)
		}
		lines = append(lines, label+" "+m.inputs[name].View())
		if msg, ok := m.fieldErrs[name]; ok {
			lines = append(lines, strings.Repeat(" ", 19)+t.Error.Render(msg))
		}
	}
	return lines
}

func (m *WizardModel) confirmationLines(c model.Confirmation) []string {
	t := ui.Current()
	fields := m.wiz.Fields()
	lines := []string{
		"",
		t.Success.Render(t.SymOK + " Reservation confirmed"),
		"",
		"Confirmation  " + t.Accent.Render(c.ID),
		"Guest         " + strings.TrimSpace(fields.String(wizard.FieldFirstName)+" "+fields.String(wizard.FieldLastName)),
		"Email         " + fields.String(wizard.FieldEmail),
		"Stay          " + fields.String(wizard.FieldCheckIn) + " → " + fields.String(wizard.FieldCheckOut),
	}
	if q, ok := m.wiz.Quote(); ok {
		lines = append(lines, "Total         "+pricing.FormatMoney(q.Total))
	}
	if !c.ReceivedAt.IsZero() {
		lines = append(lines, "Received      "+c.ReceivedAt.Local().Format("2006-01-02 15:04"))
	}
	return append(lines, "", t.Muted.Render("Press enter to exit"))
}

func quoteLine(q pricing.Quote) string {
	nights := "nights"
	if q.Nights == 1 {
		nights = "night"
	}
	return fmt.Sprintf("%d %s · subtotal %s · taxes %s · total %s",
		q.Nights, nights,
		pricing.FormatMoney(q.Subtotal),
		pricing.FormatMoney(q.Taxes),
		pricing.FormatMoney(q.Total),
	)
}

// guestsLabel mirrors the guest count as typed; additional guests are
// registered at check-in.
func guestsLabel(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil || n < 1:
		return ""
	case n == 1:
		return "1 guest"
	default:
		return fmt.Sprintf("%d guests (additional guests registered at check-in)", n)
	}
}
