// Package booking talks to the room-selection and booking endpoints.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/idilsaglam/hotelres/internal/metrics"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/pkg/logging"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultBreakerFailures = 5
	breakerOpenTimeout     = 30 * time.Second

	// IdempotencyHeader carries Reservation.IdempotencyKey on submissions.
	IdempotencyHeader = "Idempotency-Key"
)

var (
	// ErrNetwork covers transport failures, non-2xx answers, undecodable
	// bodies and an open circuit breaker.
	ErrNetwork = errors.New("booking: network error")
	// ErrRoomUnavailable is returned when select-room answers success=false.
	ErrRoomUnavailable = errors.New("booking: room unavailable")
	// ErrRejected matches every *RejectedError.
	ErrRejected = errors.New("booking: rejected")
)

// RejectedError is a submission the backend refused.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return ErrRejected.Error() + ": " + e.Message
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// RoomSelector resolves a room id to a bookable room.
type RoomSelector interface {
	SelectRoom(ctx context.Context, roomID string) (*model.Room, error)
}

// Submitter sends a completed reservation.
type Submitter interface {
	Submit(ctx context.Context, r model.Reservation) (*model.Confirmation, error)
}

// TokenSource supplies the bearer token; "" sends no Authorization header.
type TokenSource interface {
	Token() (string, error)
}

type selectRoomResponse struct {
	Success bool        `json:"success"`
	Room    *model.Room `json:"room,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type submitResponse struct {
	Success        bool      `json:"success"`
	ConfirmationID string    `json:"confirmationId,omitempty"`
	ReceivedAt     time.Time `json:"receivedAt,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	failures   uint32
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *clientConfig) { c.tokens = ts }
}

// WithBreakerFailures sets how many consecutive network failures open the
// breaker.
func WithBreakerFailures(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.failures = uint32(n)
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *clientConfig) { c.metrics = m }
}

// NewClient builds a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	cfg := clientConfig{
		timeout:  defaultTimeout,
		failures: defaultBreakerFailures,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.Default()
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{
			Timeout:   cfg.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	logger := cfg.logger
	failures := cfg.failures
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "booking-api",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// only transport-level trouble trips the breaker
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrNetwork)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: cfg.httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     cfg.tokens,
		breaker:    breaker,
		logger:     cfg.logger,
		metrics:    cfg.metrics,
	}
}

// SelectRoom asks the backend whether roomID can be booked.
func (c *Client) SelectRoom(ctx context.Context, roomID string) (*model.Room, error) {
	path := "/api/select-room/" + url.PathEscape(roomID)

	var resp selectRoomResponse
	if err := c.call(ctx, "select_room", http.MethodGet, path, nil, nil, &resp); err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			// any non-2xx counts as a network failure here
			return nil, fmt.Errorf("select room %q: %w: %s", roomID, ErrNetwork, rejected.Message)
		}
		return nil, fmt.Errorf("select room %q: %w", roomID, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("select room %q: %w", roomID, ErrRoomUnavailable)
	}
	room := model.Room{ID: roomID}
	if resp.Room != nil {
		room = *resp.Room
	}
	return &room, nil
}

// Submit posts a reservation. The idempotency key travels as a header so a
// retried submission is answered with the original confirmation.
func (c *Client) Submit(ctx context.Context, r model.Reservation) (*model.Confirmation, error) {
	headers := http.Header{}
	if r.IdempotencyKey != "" {
		headers.Set(IdempotencyHeader, r.IdempotencyKey)
	}

	var resp submitResponse
	err := c.call(ctx, "bookings", http.MethodPost, "/api/bookings", headers, r, &resp)
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		return nil, fmt.Errorf("submit booking: %w", err)
	}
	if !resp.Success {
		return nil, &RejectedError{Message: resp.Error}
	}
	if resp.ConfirmationID == "" {
		return nil, fmt.Errorf("submit booking: %w: missing confirmation id", ErrNetwork)
	}
	return &model.Confirmation{ID: resp.ConfirmationID, ReceivedAt: resp.ReceivedAt}, nil
}

func (c *Client) call(ctx context.Context, endpoint, method, path string, headers http.Header, body, out any) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, method, path, headers, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	c.metrics.ObserveClient(endpoint, err == nil, time.Since(start).Seconds())
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, headers http.Header, body, out any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			c.logger.Warn("booking API token unavailable", "error", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http request: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("booking API non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		if rejected := rejection(resp.StatusCode, respBody); rejected != nil {
			return rejected
		}
		return fmt.Errorf("%w: booking API returned %d", ErrNetwork, resp.StatusCode)
	}

	if len(respBody) == 0 || out == nil {
		return fmt.Errorf("%w: empty response", ErrNetwork)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrNetwork, err)
	}
	return nil
}

// rejection turns a 4xx answer carrying {"success":false,"error":...} into
// a *RejectedError.
func rejection(status int, body []byte) *RejectedError {
	if status < 400 || status > 499 || status == http.StatusNotFound {
		return nil
	}
	var r struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &r); err != nil || r.Success == nil || *r.Success {
		return nil
	}
	return &RejectedError{Message: r.Error}
}
