package tui

import "github.com/charmbracelet/bubbles/key"

type wizardKeys struct {
	Next, Prev, Advance, Back, SaveToCart, Quit key.Binding
}

func newWizardKeys() wizardKeys {
	return wizardKeys{
		Next:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Advance:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		SaveToCart: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save to cart")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k wizardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Advance, k.Back, k.SaveToCart, k.Quit}
}

func (k wizardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Advance, k.Back}, {k.SaveToCart, k.Quit}}
}

type cartKeys struct {
	Remove, Clear, Quit key.Binding
}

func newCartKeys() cartKeys {
	return cartKeys{
		Remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}
