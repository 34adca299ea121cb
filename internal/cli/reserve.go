package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idilsaglam/hotelres/internal/booking"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/internal/server"
	"github.com/idilsaglam/hotelres/internal/tui"
	"github.com/idilsaglam/hotelres/internal/ui"
	"github.com/idilsaglam/hotelres/internal/wizard"
)

// Messages shown after asking the backend for a room.
const (
	msgRoomSelected = "Room selected successfully"
	msgRoomRejected = "Error selecting the room"
	msgConnection   = "Connection error"
)

// catalog answers room selection from the built-in room list when no API
// is configured.
type catalog struct{}

func (catalog) SelectRoom(_ context.Context, roomID string) (*model.Room, error) {
	for _, r := range server.DefaultRooms {
		if r.ID == roomID {
			return &r, nil
		}
	}
	return nil, booking.ErrRoomUnavailable
}

func (a *app) roomSelector() booking.RoomSelector {
	if c := a.bookingClient(); c != nil {
		return c
	}
	return catalog{}
}

// selectRoom prints the outcome and returns the room on success.
func (a *app) selectRoom(ctx context.Context, roomID string) (*model.Room, bool) {
	room, err := a.roomSelector().SelectRoom(ctx, roomID)
	switch {
	case err == nil:
		ui.OK(msgRoomSelected)
		return room, true
	case errors.Is(err, booking.ErrRoomUnavailable):
		a.logger.Info("room unavailable", "room", roomID)
		ui.Fail(msgRoomRejected)
	default:
		a.logger.Error("select room failed", "room", roomID, "error", err)
		ui.Fail(msgConnection)
	}
	return nil, false
}

func doSelect(ctx context.Context, a *app, roomID string) int {
	room, ok := a.selectRoom(ctx, roomID)
	if !ok {
		return 1
	}
	t := time.NewTimer(a.cfg.RedirectDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return 1
	case <-t.C:
	}
	return startWizard(ctx, a, room)
}

func doReserve(ctx context.Context, a *app, roomID string) int {
	var room *model.Room
	if roomID != "" {
		r, ok := a.selectRoom(ctx, roomID)
		if !ok {
			return 1
		}
		room = r
	}
	return startWizard(ctx, a, room)
}

func startWizard(ctx context.Context, a *app, room *model.Room) int {
	opts := []wizard.Option{
		wizard.WithUnitPrice(a.cfg.UnitPrice),
		wizard.WithLogger(a.logger),
		wizard.WithMetrics(a.metrics),
	}
	if room != nil {
		opts = append(opts, wizard.WithRoom(*room))
	}
	w := wizard.New(a.sessionStore(), opts...)
	if err := w.Restore(ctx); err != nil {
		a.logger.Warn("previous session ignored", "error", err)
	}

	c, err := a.openCart(ctx)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	a.serveMetrics()

	m := tui.NewWizardModel(ctx, w, a.submitter(), tui.WithCart(c), tui.WithLogger(a.logger))
	final, err := runProgram(ctx, m)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if wm, ok := final.(*tui.WizardModel); ok {
		if conf, ok := wm.Confirmation(); ok {
			ui.OK("reservation confirmed: " + conf.ID)
		}
	}
	return 0
}

func doServe(ctx context.Context, a *app) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.WithLogger(a.logger), server.WithMetrics(a.metrics))
	if err := srv.Run(ctx, a.cfg.ListenAddr); err != nil {
		ui.Fail("serve: " + err.Error())
		return 1
	}
	return 0
}
