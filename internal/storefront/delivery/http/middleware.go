package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/internal/storefront/session"
	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

// TracingMiddleware adds OpenTelemetry tracing to requests
func TracingMiddleware() fiber.Handler {
	tracer := otel.Tracer("storefront-session")

	return func(c *fiber.Ctx) error {
		ctx, span := tracer.Start(
			c.UserContext(),
			c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.Path()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		c.SetUserContext(ctx)

		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-Id", span.SpanContext().TraceID().String())
		}

		err := c.Next()

		statusCode := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
		switch {
		case statusCode >= 500:
			span.SetStatus(codes.Error, "Server Error")
		case statusCode >= 400:
			span.SetStatus(codes.Error, "Client Error")
		default:
			span.SetStatus(codes.Ok, "Success")
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return err
	}
}

// StructuredLoggingMiddleware provides structured logging for requests
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.GetRespHeader(fiber.HeaderXRequestID)

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		l := logger.WithContext(c.UserContext())
		logEvent := l.Info()
		if statusCode >= 500 {
			logEvent = l.Error()
		} else if statusCode >= 400 {
			logEvent = l.Warn()
		}

		logEvent.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", statusCode).
			Dur("duration", duration).
			Int64("duration_ms", duration.Milliseconds()).
			Str("request_id", requestID).
			Msg("Session request completed")

		if err != nil {
			logger.Error(c.UserContext()).
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("Session request error")
		}

		return err
	}
}

// MetricsMiddleware records request counts and latency by route pattern
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		m.ObserveRequest(c.Method(), path, strconv.Itoa(c.Response().StatusCode()), time.Since(start))
		return err
	}
}

// AdminMiddleware lets only signed-in admins through. The admin check fails closed.
func AdminMiddleware(s *session.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := s.Principal(); !ok {
			return fail(c, fiber.StatusUnauthorized, domain.ErrNotAuthenticated)
		}
		if !s.IsAdmin(c.UserContext()) {
			logger.Warn(c.UserContext()).
				Str("path", c.Path()).
				Msg("Admin access blocked")
			return fail(c, fiber.StatusForbidden, domain.ErrForbidden)
		}
		return c.Next()
	}
}
