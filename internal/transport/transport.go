package transport

import (
	"context"
	"net/http"
	"time"

	"shopgifter/pkg/uid"

	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation id on outgoing requests.
const RequestIDHeader = "X-Request-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for a caller-supplied request ID.
const RequestIDKey contextKey = "request_id"

// Middleware wraps a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain applies middlewares so that the first one listed runs first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// NewClient builds an http.Client with request-id tagging and request logging.
// Timeouts are applied per call through contexts, not on the client.
func NewClient(logger *zap.Logger, base http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: Chain(base, RequestID, Logging(logger)),
	}
}

// WithRequestID stores a request ID in ctx for RequestID to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID tags each outgoing request with an X-Request-ID header, taken
// from the context when present and generated otherwise.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}

		id := GetRequestID(r.Context())
		if id == "" {
			id = uid.New()
		}

		// RoundTrippers must not modify the caller's request.
		clone := r.Clone(r.Context())
		clone.Header.Set(RequestIDHeader, id)
		return next.RoundTrip(clone)
	})
}

// Logging logs every upstream request at debug level and failures at warn.
// Query strings are omitted; they can carry identifiers.
func Logging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("host", r.URL.Host),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get(RequestIDHeader)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("upstream request failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("upstream request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
