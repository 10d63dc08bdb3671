package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ServiceName string
	Level       string
	LokiURL     string
}

// Logger writes JSON logs through otelzap, which adds trace_id and span_id
// from the context, and optionally mirrors them to a Loki push endpoint.
type Logger struct {
	Logger      *otelzap.Logger
	serviceName string
	lokiURL     string
	httpClient  *http.Client
}

type LokiPush struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func New(cfg Config) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)

		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}

		config.Level = level
	}

	zapLogger, err := config.Build()

	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return wrap(zapLogger, cfg), nil
}

func NewNop() *Logger {
	return wrap(zap.NewNop(), Config{ServiceName: "todolist"})
}

func wrap(zapLogger *zap.Logger, cfg Config) *Logger {
	l := &Logger{
		Logger:      otelzap.New(zapLogger),
		serviceName: cfg.ServiceName,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if cfg.LokiURL != "" {
		l.lokiURL = strings.TrimSuffix(cfg.LokiURL, "/") + "/loki/api/v1/push"
	}

	return l
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) logWithTrace(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	logFields := append(fields, zap.String("service", l.serviceName))

	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, logFields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, logFields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, logFields...)
	}

	if l.lokiURL == "" {
		return
	}

	entry, err := l.lokiEntry(ctx, level, msg, logFields)

	if err != nil {
		l.Logger.Ctx(ctx).Error("Failed to encode loki entry", zap.Error(err))
		return
	}

	go l.push(entry)
}

func (l *Logger) lokiEntry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) (LokiPush, error) {
	now := time.Now()

	encoder := zapcore.NewMapObjectEncoder()

	for _, field := range fields {
		field.AddTo(encoder)
	}

	line := encoder.Fields
	line["timestamp"] = now.Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["message"] = msg

	if spanContext := trace.SpanFromContext(ctx).SpanContext(); spanContext.IsValid() {
		line["trace_id"] = spanContext.TraceID().String()
		line["span_id"] = spanContext.SpanID().String()
	}

	body, err := json.Marshal(line)

	if err != nil {
		return LokiPush{}, err
	}

	return LokiPush{
		Streams: []LokiStream{
			{
				Stream: map[string]string{
					"service": l.serviceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(now.UnixNano(), 10), string(body)},
				},
			},
		},
	}, nil
}

// push is best effort; failures are dropped.
func (l *Logger) push(entry LokiPush) {
	body, err := json.Marshal(entry)

	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))

	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)

	if err != nil {
		return
	}

	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}
