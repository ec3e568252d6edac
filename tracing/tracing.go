// Package tracing provides OpenTelemetry tracing for the DokuWiki MCP server.
// Each tool call gets a span, and each XML-RPC round trip made on its behalf
// gets a child span named after the remote method.
package tracing

import (
	"context"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "dokuwiki-mcp-server"

	// EventDecodeFailed marks a response the codec could not read
	EventDecodeFailed = "xmlrpc.decode_failed"
)

// Failure classes recorded as rpc.error_class on round-trip spans
const (
	ClassEncode    = "encode"
	ClassTransport = "transport"
	ClassParse     = "parse"
)

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	OTLPEndpoint   string  // OTLP/HTTP collector; empty means console spans
	SampleRate     float64 // fraction of root spans kept, clamped to [0, 1]

	// Writer receives console spans. Defaults to stderr because stdout
	// carries the MCP protocol.
	Writer io.Writer
}

// DefaultConfig reads the OTEL_* environment. Tracing is off unless
// OTEL_ENABLED=true or a collector endpoint is set.
func DefaultConfig() Config {
	return Config{
		ServiceName:    TracerName,
		ServiceVersion: "1.0.0",
		Environment:    getEnvOrDefault("OTEL_ENVIRONMENT", "development"),
		Enabled:        os.Getenv("OTEL_ENABLED") == "true" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SampleRate:     sampleRateFromEnv("OTEL_TRACES_SAMPLER_ARG", 1.0),
	}
}

// Setup installs a global tracer provider and returns its shutdown function.
// When tracing is disabled the returned function is a no-op.
func Setup(ctx context.Context, config Config) (func(context.Context) error, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, config)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		attribute.String("environment", config.Environment),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	if config.OTLPEndpoint != "" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(config.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	w := config.Writer
	if w == nil {
		w = os.Stderr
	}
	return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
}

// newSampler samples root spans at rate. Round-trip spans follow the
// decision made for their tool call.
func newSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// Tracer returns the named tracer for the server
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// AddToolAttributes adds standard tool attributes to a span
func AddToolAttributes(span trace.Span, toolName, category string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.category", category),
	)
}

// AddRPCAttributes adds XML-RPC call attributes to a span
func AddRPCAttributes(span trace.Span, method, requestID string) {
	span.SetAttributes(
		attribute.String("rpc.system", "xmlrpc"),
		attribute.String("rpc.method", method),
	)
	if requestID != "" {
		span.SetAttributes(attribute.String("rpc.request_id", requestID))
	}
}

// SetOutcome sets the span status from err and records err as an event.
func SetOutcome(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// EndRPC records the outcome of one XML-RPC round trip. class is one of
// the Class constants and is ignored on success. A parse failure also adds
// an EventDecodeFailed event with the size of the unreadable body.
func EndRPC(span trace.Span, class string, responseSize int, err error) {
	if responseSize > 0 {
		span.SetAttributes(attribute.Int("rpc.response_size", responseSize))
	}
	if err != nil {
		span.SetAttributes(attribute.String("rpc.error_class", class))
		if class == ClassParse {
			span.AddEvent(EventDecodeFailed, trace.WithAttributes(
				attribute.Int("rpc.response_size", responseSize),
				attribute.String("error.message", err.Error()),
			))
		}
	}
	SetOutcome(span, err)
}

// sampleRateFromEnv parses key as a float, keeping def when unset or invalid
func sampleRateFromEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	rate, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return rate
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
