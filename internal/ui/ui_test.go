package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withTheme(t *testing.T, name string) {
	t.Helper()
	prev := current
	SetTheme(name)
	t.Cleanup(func() { current = prev })
}

func TestSetThemeFallsBack(t *testing.T) {
	withTheme(t, "Neon ")
	assert.Equal(t, "neon", Current().Name)

	SetTheme("sparkly")
	assert.Equal(t, "classic", Current().Name)
}

func TestProgressBar(t *testing.T) {
	withTheme(t, "mono")

	assert.Contains(t, ProgressBar(1, 3, 6), "##---- 1/3")
	assert.Contains(t, ProgressBar(5, 3, 6), "###### 5/3")
	assert.Contains(t, ProgressBar(0, 0, 2), "----- 0/1")
}

func TestStepIndicator(t *testing.T) {
	withTheme(t, "mono")

	got := StepIndicator([]string{"Dates", "Personal", "Payment"}, 2)
	assert.Contains(t, got, "[x] Dates")
	assert.Contains(t, got, "[>] Personal")
	assert.Contains(t, got, "[ ] Payment")
}

func TestBadge(t *testing.T) {
	assert.Empty(t, Badge(0))
	assert.Contains(t, Badge(3), "3")
}

func TestOKAndFail(t *testing.T) {
	withTheme(t, "mono")
	var out, errOut bytes.Buffer
	prevOut, prevErr := Out, Err
	Out, Err = &out, &errOut
	t.Cleanup(func() { Out, Err = prevOut, prevErr })

	OK("added")
	Fail("boom")
	Panel([]string{"line one", "two"})

	assert.Contains(t, out.String(), "ok added")
	assert.Contains(t, out.String(), "line one")
	assert.Contains(t, errOut.String(), "x boom")
}
