package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Generator is the text-generation contract every AI-assisted component depends on.
// Callers must check Available before generating.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, prompt string, tier ModelTier) (string, error)
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
}

// GatewayConfig controls retries, timeouts and throttling of gateway calls
type GatewayConfig struct {
	MaxAttempts       int
	AttemptTimeout    time.Duration
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultGatewayConfig returns 3 attempts, 1s..5s backoff, 60s per attempt and no throttling
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		MaxAttempts:    3,
		AttemptTimeout: 60 * time.Second,
		BaseBackoff:    time.Second,
		MaxBackoff:     5 * time.Second,
	}
}

// Backoff returns the wait after the given failed attempt (1-based):
// min(base × 2^(attempt-1), max).
func (c GatewayConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := c.BaseBackoff
	for i := 1; i < attempt && (c.MaxBackoff <= 0 || d < c.MaxBackoff); i++ {
		d *= 2
	}
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		d = c.MaxBackoff
	}
	return d
}

// Gateway is the retrying, throttled front door to the text-generation service
type Gateway struct {
	client  Client
	config  GatewayConfig
	limiter *rate.Limiter
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// GatewayOption customizes a Gateway
type GatewayOption func(*Gateway)

// WithSleep replaces the backoff sleep, used by tests to avoid real waits
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) GatewayOption {
	return func(g *Gateway) {
		g.sleep = sleep
	}
}

// NewGateway wraps client. A nil client yields an unavailable gateway.
func NewGateway(client Client, config GatewayConfig, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	g := &Gateway{
		client: client,
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether a credentialed client is configured
func (g *Gateway) Available() bool {
	return g != nil && g.client != nil
}

// Generate returns free text for prompt
func (g *Gateway) Generate(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return g.call(ctx, "generate", func(ctx context.Context) (string, error) {
		return g.client.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON asks the provider for a JSON response. Decoding is left to the caller.
func (g *Gateway) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return g.call(ctx, "generate_json", func(ctx context.Context) (string, error) {
		return g.client.GenerateJSON(ctx, prompt, tier)
	})
}

// Close releases the underlying client
func (g *Gateway) Close() error {
	if !g.Available() {
		return nil
	}
	return g.client.Close()
}

func (g *Gateway) call(ctx context.Context, op string, fn func(context.Context) (string, error)) (string, error) {
	if !g.Available() {
		return "", &UnavailableError{}
	}

	var last error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		resp, err := g.attempt(ctx, fn)
		if err == nil {
			return resp, nil
		}

		switch Classify(err) {
		case ClassRateLimited:
			g.logger.Warn("AI call rate limited", zap.String("op", op), zap.Error(err))
			return "", &RateLimitError{Message: "AI service rate limit exceeded", Cause: err}
		case ClassUnauthorized:
			g.logger.Error("AI call unauthorized", zap.String("op", op), zap.Error(err))
			return "", &UnauthorizedError{Message: "AI service rejected credentials", Cause: err}
		case ClassMalformed:
			return "", err
		}

		// The caller gave up; the attempt's own timeout does not count.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		last = err
		g.logger.Warn("AI call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.config.MaxAttempts),
			zap.Error(err))

		if attempt < g.config.MaxAttempts {
			if err := g.sleep(ctx, g.config.Backoff(attempt)); err != nil {
				return "", err
			}
		}
	}

	return "", &CallError{Message: "AI call failed", Attempts: g.config.MaxAttempts, Cause: last}
}

func (g *Gateway) attempt(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if g.config.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, g.config.AttemptTimeout)
	defer cancel()

	resp, err := fn(attemptCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return "", fmt.Errorf("attempt timed out after %s: %w", g.config.AttemptTimeout, err)
	}
	return resp, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
