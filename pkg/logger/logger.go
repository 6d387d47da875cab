// Package logger wraps zerolog with the fields and events laundry logs.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type contextKey string

const LoggerKey contextKey = "logger"

type Logger struct {
	*zerolog.Logger
}

var (
	mu          sync.Mutex
	output      io.Writer = os.Stdout
	environment           = "development"
	version               = "unknown"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "@timestamp"
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		environment = env
	}
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		version = v
	}
}

// New creates a logger tagged with service, writing to the configured output
func New(service string) *Logger {
	mu.Lock()
	w := output
	mu.Unlock()
	return NewWithWriter(service, w)
}

// NewWithWriter creates a logger writing to w, used by tests to capture output
func NewWithWriter(service string, w io.Writer) *Logger {
	hostname, _ := os.Hostname()

	logger := zerolog.New(w).
		With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname).
		Str("environment", environment).
		Str("version", version).
		Logger()

	return &Logger{&logger}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{&logger}
}

// WithContext returns the logger stored in ctx, or a new one for service
func WithContext(ctx context.Context, service string) *Logger {
	if logger, ok := ctx.Value(LoggerKey).(*Logger); ok {
		return logger
	}
	return New(service)
}

func (l *Logger) ToContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, LoggerKey, l)
}

// WithRequestID tags every line with the run or request id
func (l *Logger) WithRequestID(requestID string) *Logger {
	logger := l.Logger.With().Str("request_id", requestID).Logger()
	return &Logger{&logger}
}

func (l *Logger) WithJob(jobName string) *Logger {
	logger := l.Logger.With().Str("job_name", jobName).Logger()
	return &Logger{&logger}
}

func (l *Logger) WithError(err error) *Logger {
	logger := l.Logger.With().Err(err).Logger()
	return &Logger{&logger}
}

// LogJobStart marks the start of one job within a run
func (l *Logger) LogJobStart(jobName string, schedule string) {
	l.Info().
		Str("action", "job_start").
		Str("job_name", jobName).
		Str("schedule", schedule).
		Msg("Running " + jobName)
}

// LogPhase logs a pipeline phase of a job (authorize, fetch, push)
func (l *Logger) LogPhase(jobName, phase, connector string) {
	l.Info().
		Str("action", "job_phase").
		Str("job_name", jobName).
		Str("phase", phase).
		Str("connector", connector).
		Msg(jobName + "/" + connector + " - " + phase)
}

// LogJobComplete logs a job that fetched and pushed its items
func (l *Logger) LogJobComplete(jobName string, items int, duration time.Duration) {
	l.Info().
		Str("action", "job_complete").
		Str("job_name", jobName).
		Int("items", items).
		Dur("duration", duration).
		Msg("Finished " + jobName)
}

// LogHTTPCall logs one request made by a connector. status is 0 when no response arrived.
func (l *Logger) LogHTTPCall(method, url string, status int, duration time.Duration, err error) {
	event := l.Debug()
	if err != nil {
		event = l.Warn().Err(err)
	}

	event.
		Str("action", "http_call").
		Str("method", method).
		Str("url", url).
		Int("status_code", status).
		Dur("duration", duration).
		Msg("Connector request")
}

// LogDatabaseOperation logs a statement batch run by a store or connector
func (l *Logger) LogDatabaseOperation(operation string, table string, affectedRows int, duration time.Duration, err error) {
	event := l.Debug()
	if err != nil {
		event = l.Error().Err(err)
	}

	event.
		Str("action", "db_operation").
		Str("operation", operation).
		Str("table", table).
		Int("affected_rows", affectedRows).
		Dur("duration", duration).
		Msg("Database operation")
}

// Fatalf logs at fatal level and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.Fatal().Msgf(format, args...)
}

// Setup sets the global level and environment. Development logs are
// human-readable; every other environment logs JSON.
func Setup(level, env string) {
	switch strings.ToLower(level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	mu.Lock()
	defer mu.Unlock()
	if env != "" {
		environment = env
	}
	if environment == "development" {
		if _, pretty := output.(zerolog.ConsoleWriter); !pretty {
			output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
		}
	}
}

// SetOutput redirects loggers created afterwards by New
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}
