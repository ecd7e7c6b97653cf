package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/serializer/internal/eventbus"
	events "github.com/hanpama/serializer/internal/events"
	reqid "github.com/hanpama/serializer/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	_, shutdown := install(eventbus.Current(), tp)
	return shutdown, nil
}

// install attaches a Subscriber tracing on tp to b. The returned shutdown
// detaches it before flushing tp.
func install(b *eventbus.Bus, tp *sdktrace.TracerProvider) (*Subscriber, func(context.Context) error) {
	sub := NewSubscriber(tp.Tracer("serializer"))
	unregister := sub.Register(b)
	return sub, func(ctx context.Context) error {
		unregister()
		return tp.Shutdown(ctx)
	}
}

// Subscriber turns conversion events into spans. Spans are keyed by the
// conversion ID carried in the event context.
type Subscriber struct {
	tracer trace.Tracer
	spans  sync.Map // rid -> trace.Span
}

// NewSubscriber returns a Subscriber that starts spans on tracer.
func NewSubscriber(tracer trace.Tracer) *Subscriber { return &Subscriber{tracer: tracer} }

// Register attaches the subscriber to b and returns a func detaching it.
func (s *Subscriber) Register(b *eventbus.Bus) (unregister func()) {
	offs := []func(){
		eventbus.On(b, s.onStart),
		eventbus.On(b, s.onFinish),
		eventbus.On(b, s.onAdvisory),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func (s *Subscriber) onStart(ctx context.Context, e events.ConversionStart) {
	rid, _ := reqid.FromContext(ctx)
	_, span := s.tracer.Start(ctx, "serializer."+string(e.Direction))
	span.SetAttributes(
		attribute.String("serializer.schema", e.Schema),
		attribute.Int("serializer.count", e.Count),
		attribute.String("serializer.id", rid),
	)
	s.spans.Store(rid, span)
}

func (s *Subscriber) onFinish(ctx context.Context, e events.ConversionFinish) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.spans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attribute.Int64("serializer.duration_us", e.Duration.Microseconds()))
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End()
}

func (s *Subscriber) onAdvisory(ctx context.Context, e events.CoercionAdvisory) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.spans.Load(rid)
	if !ok {
		return
	}
	v.(trace.Span).AddEvent("coercion.advisory", trace.WithAttributes(
		attribute.String("serializer.field", e.Field),
		attribute.String("serializer.field_type", e.Kind),
		attribute.String("message", e.Message),
	))
}
