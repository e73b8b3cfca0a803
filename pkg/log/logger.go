package log

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Level is the severity of an entry.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// MarshalText lets levels appear in JSON and YAML config as names.
func (l Level) MarshalText() ([]byte, error) { return []byte(strings.ToLower(l.String())), nil }

// UnmarshalText accepts any name ParseLevel does.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Fields is a bag of structured values.
type Fields map[string]interface{}

// Keys that WithContext lifts from a context.Context.
const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	ProfileIDKey = "profile_id"
	ComponentKey = "component"
	OperationKey = "operation"
)

var contextKeys = []string{RequestIDKey, UserIDKey, ProfileIDKey, ComponentKey, OperationKey}

// Entry is one formatted log line before it reaches the outputs.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Caller    string
	Error     error
}

// Logger is the logging facade every flowerlove package takes.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal logs and exits the process.
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Logger
	WithError(err error) Logger
	// WithContext copies values stored with ContextWithValue.
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger

	Level() Level
}

// Formatter turns an entry into bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output receives formatted entries.
type Output interface {
	Write(entry *Entry, formattedEntry []byte) error
	Close() error
}

type ctxKey string

// ContextWithValue stores a logging value (see the *Key constants) on ctx.
func ContextWithValue(ctx context.Context, key, value string) context.Context {
	return context.WithValue(ctx, ctxKey(key), value)
}

// ContextExtractor returns the logging values stored on ctx.
func ContextExtractor(ctx context.Context) Fields {
	fields := Fields{}
	if ctx == nil {
		return fields
	}
	for _, k := range contextKeys {
		if v := ctx.Value(ctxKey(k)); v != nil {
			fields[k] = v
		}
	}
	return fields
}

// BaseLogger is the Logger implementation; slog sits underneath it.
type BaseLogger struct {
	level      Level
	fields     Fields
	formatter  Formatter
	outputs    []Output
	handler    *bridgeHandler
	slogLogger *slog.Logger
}

// LoggerOption configures NewLogger.
type LoggerOption func(*BaseLogger)

// NewLogger builds a logger. Without options it writes JSON at info level to stderr.
func NewLogger(options ...LoggerOption) Logger {
	l := &BaseLogger{level: InfoLevel, fields: Fields{}, formatter: &JSONFormatter{}}
	for _, opt := range options {
		opt(l)
	}
	if len(l.outputs) == 0 {
		l.outputs = []Output{NewConsoleOutput()}
	}
	l.handler = newBridgeHandler(l)
	l.slogLogger = slog.New(l.handler)
	return l
}

func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level = level }
}

func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = formatter }
}

// WithOutput adds an output; it may be given more than once.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, output) }
}
