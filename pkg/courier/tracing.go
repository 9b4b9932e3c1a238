package courier

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// startExchangeSpan opens a client span for one exchange and injects the
// trace context into the outbound request headers. The returned function
// ends the span with the exchange outcome.
func startExchangeSpan(ctx context.Context, req *Request) func(*Response, error) {
	tracer := otel.Tracer("courier")

	ctx, span := tracer.Start(ctx, req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.target", req.Path),
		),
	)

	// Propagate trace context through request headers
	propagation.TraceContext{}.Inject(ctx, requestCarrier{req})

	return func(resp *Response, err error) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("http.status_code", resp.Status()))
			if resp.Status() >= 500 {
				span.SetStatus(codes.Error, strconv.Itoa(resp.Status()))
			}
		}
		span.End()
	}
}

// requestCarrier adapts a Request's header list to the propagation carrier
// interface.
type requestCarrier struct {
	req *Request
}

func (c requestCarrier) Get(key string) string {
	for _, h := range c.req.Headers {
		if h[0] == key {
			return h[1]
		}
	}
	return ""
}

func (c requestCarrier) Set(key, value string) {
	c.req.AddHeader(key, value)
}

func (c requestCarrier) Keys() []string {
	keys := make([]string, 0, len(c.req.Headers))
	for _, h := range c.req.Headers {
		keys = append(keys, h[0])
	}
	return keys
}
