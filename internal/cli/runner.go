package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/idilsaglam/hotelres/internal/cart"
	"github.com/idilsaglam/hotelres/internal/config"
	"github.com/idilsaglam/hotelres/internal/mask"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/pricing"
	"github.com/idilsaglam/hotelres/internal/tui"
	"github.com/idilsaglam/hotelres/internal/ui"
)

// Options tune a Run invocation.
type Options struct {
	// Config replaces config.Load, mostly for tests.
	Config *config.Config
}

// runProgram drives full-screen models; tests swap it out.
var runProgram = tui.Run

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "mask":
		if len(a) != 2 {
			ui.Fail("usage: hotelres mask <phone|card|expiry|cvv> <value>")
			return 2
		}
		return doMask(a[0], a[1])

	case "quote":
		if len(a) < 2 || len(a) > 3 {
			ui.Fail("usage: hotelres quote <checkIn> <checkOut> [price]")
			return 2
		}
	}

	cfg := opt.Config
	if cfg == nil {
		cfg = config.Load()
	}

	switch cmd {
	case "quote":
		price := cfg.UnitPrice
		if len(a) == 3 {
			price = pricing.ParsePrice(a[2], cfg.UnitPrice)
		}
		return doQuote(a[0], a[1], price)

	case "serve":
		return withApp(cfg, ui.Err, func(app *app) int { return doServe(ctx, app) })

	case "reserve":
		if len(a) > 1 {
			ui.Fail("usage: hotelres reserve [roomId]")
			return 2
		}
		roomID := ""
		if len(a) == 1 {
			roomID = a[0]
		}
		return withApp(cfg, nil, func(app *app) int { return doReserve(ctx, app, roomID) })

	case "select":
		if len(a) != 1 {
			ui.Fail("usage: hotelres select <roomId>")
			return 2
		}
		return withApp(cfg, nil, func(app *app) int { return doSelect(ctx, app, a[0]) })

	case "cart":
		return withApp(cfg, nil, func(app *app) int { return runCart(ctx, app, a) })

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: hotelres auth <login|logout|status|whoami>")
			return 2
		}
		return withApp(cfg, nil, func(app *app) int { return runAuth(app, a) })
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Err)
	PrintHelp()
	return 2
}

func withApp(cfg *config.Config, logTo io.Writer, fn func(*app) int) int {
	a, err := newApp(cfg, logTo)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer a.Close()
	return fn(a)
}

func PrintHelp() {
	fmt.Fprint(ui.Out, `hotelres - book a hotel stay from the terminal

Usage:
  hotelres [-theme classic|neon|mono] [-no-color] <subcommand> [args]

Subcommands:
  reserve [roomId]                  Open the reservation wizard
  select <roomId>                   Check a room with the backend, then open the wizard
  quote <checkIn> <checkOut> [price]
                                    Price a stay (dates as YYYY-MM-DD)
  cart                              Browse the reservation cart
  cart ls                           List cart items
  cart add <roomId> <in> <out> <guests>
                                    Add a stay to the cart
  cart rm <index>                   Remove item at 1-based index
  cart clear                        Empty the cart
  mask <phone|card|expiry|cvv> <value>
                                    Format a value the way the wizard does
  serve                             Run the development booking backend
  auth <login|logout|status|whoami> Manage the API token

Examples:
  hotelres reserve deluxe
  hotelres quote 2024-06-10 2024-06-13 '$300 / night'
  hotelres cart add suite 2024-07-01 2024-07-04 2
  hotelres cart rm 1
`)
}

// -------------- subcommand impls ----------------

func doMask(name, value string) int {
	fn, ok := mask.ByName(name)
	if !ok {
		ui.Fail("mask: unknown mask " + strconv.Quote(name))
		ui.Hint("Known masks: phone, card, expiry, cvv")
		return 2
	}
	fmt.Fprintln(ui.Out, fn(value))
	return 0
}

func doQuote(checkIn, checkOut string, price float64) int {
	in, err := model.ParseDate(checkIn)
	if err != nil {
		ui.Fail("quote: " + err.Error())
		return 2
	}
	out, err := model.ParseDate(checkOut)
	if err != nil {
		ui.Fail("quote: " + err.Error())
		return 2
	}
	q, ok := pricing.Calculate(in, out, price)
	if !ok {
		ui.Fail("quote: check-out must be after check-in")
		return 2
	}
	t := ui.Current()
	ui.Panel([]string{
		t.Title.Render("Quote") + "  " + t.Muted.Render(fmt.Sprintf("%s → %s at %s/night", in, out, pricing.FormatMoney(price))),
		"",
		fmt.Sprintf("Nights     %d", q.Nights),
		fmt.Sprintf("Subtotal   %s", pricing.FormatMoney(q.Subtotal)),
		fmt.Sprintf("Taxes      %s", pricing.FormatMoney(q.Taxes)),
		t.Accent.Render(fmt.Sprintf("Total      %s", pricing.FormatMoney(q.Total))),
	})
	return 0
}

func runCart(ctx context.Context, a *app, args []string) int {
	c, err := a.openCart(ctx)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if len(args) == 0 {
		if _, err := runProgram(ctx, tui.NewCartModel(ctx, c, a.logger)); err != nil {
			ui.Fail(err.Error())
			return 1
		}
		return 0
	}
	c.OnChange(printCount)

	switch args[0] {
	case "ls":
		return cartList(c)

	case "add":
		if len(args) != 5 {
			ui.Fail("usage: hotelres cart add <roomId> <checkIn> <checkOut> <guests>")
			return 2
		}
		return cartAdd(ctx, c, args[1:])

	case "rm":
		if len(args) != 2 {
			ui.Fail("usage: hotelres cart rm <index>")
			return 2
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			ui.Fail("rm: not a number: " + args[1])
			return 2
		}
		if err := c.Remove(ctx, n-1); err != nil {
			if errors.Is(err, cart.ErrIndexOutOfRange) {
				ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", c.Count(), n))
				ui.Hint("Hint: run `hotelres cart ls` to see valid indexes")
				return 2
			}
			ui.Fail("save: " + err.Error())
			return 1
		}
		ui.OK("removed")
		return 0

	case "clear":
		if err := c.Clear(ctx); err != nil {
			ui.Fail("save: " + err.Error())
			return 1
		}
		ui.OK("cleared")
		return 0
	}

	ui.Fail("usage: hotelres cart [ls|add|rm|clear]")
	return 2
}

func printCount(n int) {
	fmt.Fprintln(ui.Out, ui.Current().Muted.Render(fmt.Sprintf("cart: %d", n))+" "+ui.Badge(n))
}

func cartAdd(ctx context.Context, c *cart.Cart, args []string) int {
	roomID := strings.TrimSpace(args[0])
	if roomID == "" {
		ui.Fail("add: empty room id")
		return 2
	}
	in, err := model.ParseDate(args[1])
	if err != nil {
		ui.Fail("add: check-in: " + err.Error())
		return 2
	}
	out, err := model.ParseDate(args[2])
	if err != nil {
		ui.Fail("add: check-out: " + err.Error())
		return 2
	}
	if !out.After(in) {
		ui.Fail("add: check-out must be after check-in")
		return 2
	}
	guests, err := strconv.Atoi(args[3])
	if err != nil || guests < 1 {
		ui.Fail("add: guests must be a positive number")
		return 2
	}
	if err := c.Add(ctx, roomID, in, out, guests); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.OK("added")
	return 0
}

func cartList(c *cart.Cart) int {
	t := ui.Current()
	items := c.Items()
	nights := 0
	for _, it := range items {
		nights += it.Nights()
	}

	lines := []string{
		fmt.Sprintf("%s %s  %s", t.Title.Render("Reservation cart"), ui.Badge(len(items)),
			t.Muted.Render(fmt.Sprintf("%d nights in total", nights))),
		"",
	}
	lines = append(lines, cartLines(items)...)
	lines = append(lines, "", t.Muted.Render("Tip: add with `hotelres cart add deluxe 2024-07-01 2024-07-04 2`"))
	ui.Panel(lines)
	return 0
}

func cartLines(items []model.CartItem) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no reservations")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, fmt.Sprintf("%s %s  %s → %s  %s",
			t.Muted.Render(fmt.Sprintf("%2d.", i+1)),
			t.Accent.Render(it.RoomID),
			it.CheckIn, it.CheckOut,
			t.Muted.Render(fmt.Sprintf("%d nights · %d guests", it.Nights(), it.Guests)),
		))
	}
	return out
}
