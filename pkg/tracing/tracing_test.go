package tracing_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"todolist/pkg/tracing"
)

func TestCreateChildSpan_RecordsErrors(t *testing.T) {
	RegisterTestingT(t)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	ctx, span := tracing.CreateChildSpan(context.Background(), "handler.todo.Get", []attribute.KeyValue{
		attribute.String("todo.id", "abc"),
	})

	Expect(tracing.GetTraceID(ctx)).To(HaveLen(32))

	tracing.AddSpanError(span, errors.New("boom"))
	tracing.AddHTTPAttributes(span, "GET", "/api/todos/:id", 500)
	span.End()

	ended := recorder.Ended()

	Expect(ended).To(HaveLen(1))
	Expect(ended[0].Name()).To(Equal("handler.todo.Get"))
	Expect(ended[0].Status().Code).To(Equal(codes.Error))
	Expect(ended[0].Attributes()).To(ContainElement(attribute.String("todo.id", "abc")))
}

func TestGetTraceID_WithoutSpan(t *testing.T) {
	RegisterTestingT(t)

	Expect(tracing.GetTraceID(context.Background())).To(BeEmpty())
}
