package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/idilsaglam/hotelres/internal/metrics"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, append([]Option{WithLogger(logging.Discard())}, opts...)...)
}

func TestSelectRoom_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/select-room/deluxe", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"room":{"id":"deluxe","name":"Deluxe Room","price":350}}`))
	}, WithTokenSource(staticToken("tok")))

	room, err := client.SelectRoom(context.Background(), "deluxe")
	require.NoError(t, err)
	assert.Equal(t, model.Room{ID: "deluxe", Name: "Deluxe Room", Price: 350}, *room)
}

func TestSelectRoom_SuccessWithoutRoomBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	room, err := client.SelectRoom(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "101", room.ID)
}

func TestSelectRoom_Unavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})

	_, err := client.SelectRoom(context.Background(), "attic")
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestSelectRoom_NetworkErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream failed", http.StatusBadGateway)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}},
		{"bad request body", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"bad id"}`))
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
		{"empty", func(w http.ResponseWriter, r *http.Request) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.SelectRoom(context.Background(), "deluxe")
			assert.ErrorIs(t, err, ErrNetwork)
			assert.NotErrorIs(t, err, ErrRejected)
		})
	}
}

func TestSelectRoom_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client := NewClient(url, WithLogger(logging.Discard()), WithTimeout(time.Second))
	_, err := client.SelectRoom(context.Background(), "deluxe")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestSubmit_Success(t *testing.T) {
	received := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get(IdempotencyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body model.Reservation
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "suite", body.RoomID)
		assert.Equal(t, "Ada", body.Fields["firstName"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"confirmationId": "conf-1",
			"receivedAt":     received,
		})
	})

	c, err := client.Submit(context.Background(), model.Reservation{
		IdempotencyKey: "key-1",
		RoomID:         "suite",
		Fields:         map[string]any{"firstName": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "conf-1", c.ID)
	assert.True(t, received.Equal(c.ReceivedAt))
}

func TestSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"ok status", http.StatusOK, "dates unavailable"},
		{"unprocessable", http.StatusUnprocessableEntity, "missing fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": tt.message})
			})

			_, err := client.Submit(context.Background(), model.Reservation{IdempotencyKey: "k"})
			require.ErrorIs(t, err, ErrRejected)
			assert.NotErrorIs(t, err, ErrNetwork)
			var rejected *RejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.message, rejected.Message)
		})
	}
}

func TestSubmit_MissingConfirmation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := client.Submit(context.Background(), model.Reservation{IdempotencyKey: "k"})
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreakerFailures(2))

	ctx := context.Background()
	for range 2 {
		_, err := client.SelectRoom(ctx, "deluxe")
		require.ErrorIs(t, err, ErrNetwork)
	}
	_, err := client.SelectRoom(ctx, "deluxe")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits")
}

func TestRejectionsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"success":false,"error":"no"}`))
	}, WithBreakerFailures(1))

	for range 3 {
		_, err := client.Submit(context.Background(), model.Reservation{IdempotencyKey: "k"})
		require.ErrorIs(t, err, ErrRejected)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientMetrics(t *testing.T) {
	m := metrics.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}, WithMetrics(m))

	_, err := client.SelectRoom(context.Background(), "deluxe")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(m.Registry(), "hotelres_booking_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSimulatedSubmitter(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := SimulatedSubmitter{Now: func() time.Time { return now }}

	first, err := s.Submit(context.Background(), model.Reservation{IdempotencyKey: "abc"})
	require.NoError(t, err)
	second, err := s.Submit(context.Background(), model.Reservation{IdempotencyKey: "abc"})
	require.NoError(t, err)
	other, err := s.Submit(context.Background(), model.Reservation{IdempotencyKey: "xyz"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, now, first.ReceivedAt)
}

func TestSimulatedSubmitterHonorsCancel(t *testing.T) {
	s := SimulatedSubmitter{Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, model.Reservation{})
	assert.ErrorIs(t, err, context.Canceled)
}
