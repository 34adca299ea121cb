package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/idilsaglam/hotelres/internal/cart"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/store"
	"github.com/idilsaglam/hotelres/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func newCart(t *testing.T, st store.Store, rooms ...string) *cart.Cart {
	t.Helper()
	ctx := context.Background()
	c, err := cart.New(ctx, st, cart.WithLogger(logging.Discard()))
	require.NoError(t, err)
	in := model.NewDate(now)
	for _, room := range rooms {
		require.NoError(t, c.Add(ctx, room, in, in.AddDays(2), 2))
	}
	return c
}

func TestCartModelRemovePersists(t *testing.T) {
	st := store.NewMemory()
	c := newCart(t, st, "standard", "suite")
	m := NewCartModel(context.Background(), c, logging.Discard())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m.Update(runeKey('d'))

	require.Equal(t, 1, c.Count())
	assert.Equal(t, "suite", c.Items()[0].RoomID)
	assert.Equal(t, "removed", m.status)

	reloaded, err := cart.New(context.Background(), st, cart.WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Count())
}

func TestCartModelClear(t *testing.T) {
	c := newCart(t, store.NewMemory(), "standard", "deluxe")
	m := NewCartModel(context.Background(), c, logging.Discard())

	m.Update(runeKey('x'))

	assert.Zero(t, c.Count())
	view := m.View()
	assert.Contains(t, view, "The cart is empty")
	assert.Contains(t, view, "cleared")
}

func TestCartModelRemoveOnEmptyIsNoop(t *testing.T) {
	c := newCart(t, store.NewMemory())
	m := NewCartModel(context.Background(), c, logging.Discard())

	_, cmd := m.Update(runeKey('d'))
	assert.Nil(t, cmd)
	assert.Empty(t, m.status)
}

func TestCartModelTitleShowsBadge(t *testing.T) {
	c := newCart(t, store.NewMemory(), "standard", "deluxe", "suite")
	m := NewCartModel(context.Background(), c, logging.Discard())

	assert.Contains(t, m.list.Title, "3")
	m.Update(runeKey('d'))
	assert.Contains(t, m.list.Title, "2")
}

func TestCartModelQuit(t *testing.T) {
	m := NewCartModel(context.Background(), newCart(t, store.NewMemory()), logging.Discard())

	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd, msg.String())
		assert.Equal(t, tea.Quit(), cmd())
	}
}
