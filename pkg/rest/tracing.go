package rest

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/fivetwenty-io/restverb"

// tracer wraps each call in a client span and propagates the trace context
// through request headers.
type tracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

func newTracer(provider trace.TracerProvider) *tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &tracer{
		tracer:     provider.Tracer(instrumentationName),
		propagator: otel.GetTextMapPropagator(),
	}
}

// start opens a span and returns the propagation headers to send with the call.
func (t *tracer) start(ctx context.Context, method, rawURL string, simulated bool) (context.Context, trace.Span, map[string]string) {
	ctx, span := t.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", rawURL),
			attribute.Bool("restverb.simulated", simulated),
		),
	)

	carrier := propagation.MapCarrier{}
	t.propagator.Inject(ctx, carrier)

	return ctx, span, carrier
}

// end completes the span from the normalized outcome.
func (t *tracer) end(span trace.Span, resp *Response, attempts int, err error) {
	if attempts > 1 {
		span.SetAttributes(attribute.Int("http.retry_count", attempts-1))
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case resp != nil:
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

		if resp.StatusCode >= constants.HTTPStatusBadRequest {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	span.End()
}

// cacheHit marks a span answered from the cache.
func (t *tracer) cacheHit(span trace.Span) {
	span.AddEvent("cache_hit")
}
