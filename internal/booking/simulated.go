package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/idilsaglam/hotelres/internal/model"
)

// DefaultSimulatedDelay is how long SimulatedSubmitter pretends to work.
const DefaultSimulatedDelay = 2 * time.Second

// SimulatedSubmitter confirms every reservation after Delay without
// talking to a backend. It is used when no API URL is configured. The
// confirmation id is derived from the idempotency key, so a resubmission
// gets the same id.
type SimulatedSubmitter struct {
	Delay time.Duration
	Now   func() time.Time
}

func (s SimulatedSubmitter) Submit(ctx context.Context, r model.Reservation) (*model.Confirmation, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	id := uuid.NewString()
	if r.IdempotencyKey != "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.IdempotencyKey)).String()
	}
	return &model.Confirmation{ID: id, ReceivedAt: now().UTC()}, nil
}
