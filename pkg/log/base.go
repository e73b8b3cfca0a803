package log

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// derive returns a child logger whose handler carries attrs.
func (l *BaseLogger) derive(attrs []slog.Attr) *BaseLogger {
	if len(attrs) == 0 {
		return l
	}
	nl := *l
	nl.fields = make(Fields, len(l.fields)+len(attrs))
	for k, v := range l.fields {
		nl.fields[k] = v
	}
	for _, a := range attrs {
		nl.fields[a.Key] = a.Value.Any()
	}
	h := l.handler.WithAttrs(attrs).(*bridgeHandler)
	h.logger = &nl
	nl.handler = h
	nl.slogLogger = slog.New(h)
	return &nl
}

// emit skips emit and the exported method when resolving the caller.
func (l *BaseLogger) emit(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), toSlogLevel(level), msg, pcs[0])
	r.AddAttrs(attrsFromFieldSlice(fields)...)
	_ = l.handler.Handle(context.Background(), r)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.emit(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.emit(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fields) }

func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.emit(FatalLevel, msg, fields)
	os.Exit(1)
}

func (l *BaseLogger) With(fields ...Field) Logger {
	return l.derive(attrsFromFieldSlice(fields))
}

func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.derive([]slog.Attr{slog.String("error", err.Error())})
}

func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	return l.derive(attrsFromMap(ContextExtractor(ctx)))
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

func (l *BaseLogger) Level() Level { return l.level }

// Slog exposes the slog.Logger backed by this logger's pipeline.
func (l *BaseLogger) Slog() *slog.Logger { return l.slogLogger }
