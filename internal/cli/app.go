package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/idilsaglam/hotelres/internal/auth"
	"github.com/idilsaglam/hotelres/internal/booking"
	"github.com/idilsaglam/hotelres/internal/cart"
	"github.com/idilsaglam/hotelres/internal/config"
	"github.com/idilsaglam/hotelres/internal/metrics"
	"github.com/idilsaglam/hotelres/internal/store"
	"github.com/idilsaglam/hotelres/internal/store/jsonstore"
	"github.com/idilsaglam/hotelres/internal/store/redisstore"
	"github.com/idilsaglam/hotelres/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// app carries the dependencies one invocation needs. Everything is built
// lazily so `hotelres mask` never touches Redis or the network.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
	creds   *auth.Credentials

	redis     *redis.Client
	client    *booking.Client
	metricSrv *http.Server
	closers   []func() error
}

// newApp opens the log destination. A nil logTo means the configured log
// file.
func newApp(cfg *config.Config, logTo io.Writer) (*app, error) {
	a := &app{
		cfg:     cfg,
		metrics: metrics.New(),
		creds:   auth.NewCredentials(cfg.DataDir),
	}
	if logTo == nil {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f.Close)
		logTo = f
	}
	a.logger = logging.New(cfg.LogLevel, logTo)
	return a, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func (a *app) Close() {
	if a.metricSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metricSrv.Shutdown(ctx)
		cancel()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// cartStore is durable: one JSON file per key in the data dir.
func (a *app) cartStore() store.Store {
	return jsonstore.New(a.cfg.DataDir)
}

// sessionStore holds the wizard record. Redis keys expire after the
// session TTL; the file fallback lives under the OS temp dir.
func (a *app) sessionStore() store.Store {
	if a.cfg.RedisAddr == "" {
		return jsonstore.New(a.cfg.SessionDir())
	}
	if a.redis == nil {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
		})
	}
	return redisstore.New(a.redis, a.cfg.SessionTTL)
}

func (a *app) openCart(ctx context.Context) (*cart.Cart, error) {
	return cart.New(ctx, a.cartStore(), cart.WithLogger(a.logger), cart.WithMetrics(a.metrics))
}

// bookingClient is nil when no API URL is configured.
func (a *app) bookingClient() *booking.Client {
	if a.cfg.APIBaseURL == "" {
		return nil
	}
	if a.client == nil {
		a.client = booking.NewClient(a.cfg.APIBaseURL,
			booking.WithTimeout(a.cfg.HTTPTimeout),
			booking.WithTokenSource(a.creds),
			booking.WithBreakerFailures(a.cfg.BreakerFailures),
			booking.WithLogger(a.logger),
			booking.WithMetrics(a.metrics),
		)
	}
	return a.client
}

// submitter falls back to a simulated backend when offline.
func (a *app) submitter() booking.Submitter {
	if c := a.bookingClient(); c != nil {
		return c
	}
	return booking.SimulatedSubmitter{Delay: a.cfg.SubmitDelay}
}

// serveMetrics exposes the registry on MetricsAddr while the command runs.
func (a *app) serveMetrics() {
	if a.cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.metricSrv = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", a.cfg.MetricsAddr, "error", err)
		}
	}()
	a.logger.Info("metrics listening", "addr", a.cfg.MetricsAddr)
}
