package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/idilsaglam/hotelres/internal/cart"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/ui"
	"github.com/idilsaglam/hotelres/pkg/logging"
)

// cartItem adapts model.CartItem to list.Item.
type cartItem struct {
	model.CartItem
}

func (i cartItem) Title() string {
	return fmt.Sprintf("%s  %s → %s", i.RoomID, i.CheckIn, i.CheckOut)
}

func (i cartItem) Description() string {
	guests := "guests"
	if i.Guests == 1 {
		guests = "guest"
	}
	return fmt.Sprintf("%d nights · %d %s · added %s", i.Nights(), i.Guests, guests, i.AddedAt.Local().Format("2006-01-02 15:04"))
}

func (i cartItem) FilterValue() string { return i.RoomID }

// single-line rows
type cartDelegate struct{}

func (d cartDelegate) Height() int                               { return 1 }
func (d cartDelegate) Spacing() int                              { return 0 }
func (d cartDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d cartDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(cartItem)
	if !ok {
		return
	}
	t := ui.Current()
	line := fmt.Sprintf("%2d. %s  %s", index+1, it.Title(), t.Muted.Render(it.Description()))
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// CartModel lists the cart and applies removals immediately.
type CartModel struct {
	ctx    context.Context
	cart   *cart.Cart
	logger *logging.Logger
	list   list.Model
	keys   cartKeys
	status string
}

func NewCartModel(ctx context.Context, c *cart.Cart, logger *logging.Logger) *CartModel {
	if logger == nil {
		logger = logging.Default()
	}
	keys := newCartKeys()

	l := list.New(nil, cartDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("reservation", "reservations")
	l.Styles.Title = ui.Current().Title
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keys.Remove, keys.Clear} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{keys.Remove, keys.Clear} }

	m := &CartModel{ctx: ctx, cart: c, logger: logger, list: l, keys: keys}
	m.refresh()
	return m
}

func (m *CartModel) Init() tea.Cmd { return nil }

func (m *CartModel) refresh() {
	items := m.cart.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, cartItem{it})
	}
	m.list.SetItems(li)
	m.list.Title = "Reservation cart " + ui.Badge(m.cart.Count())
}

func (m *CartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c" || key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Remove):
			if m.cart.Count() == 0 {
				return m, nil
			}
			i := m.list.Index()
			if err := m.cart.Remove(m.ctx, i); err != nil {
				m.logger.Warn("cart remove failed", "index", i, "error", err)
				m.status = "remove failed: " + err.Error()
			} else {
				m.status = "removed"
			}
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			if err := m.cart.Clear(m.ctx); err != nil {
				m.logger.Warn("cart clear failed", "error", err)
				m.status = "clear failed: " + err.Error()
			} else {
				m.status = "cleared"
			}
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *CartModel) View() string {
	content := m.list.View()
	if m.cart.Count() == 0 {
		content = ui.Current().Muted.Render("The cart is empty. Add a stay with `hotelres cart add`.")
	}
	if m.status != "" {
		content += "\n" + ui.Current().Muted.Render(m.status)
	}
	return ui.PanelString([]string{content})
}
