package log

import (
	"bytes"
	stdlog "log"
	"strings"
)

type stdWriter struct {
	logger Logger
	level  Level
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(bytes.TrimRight(p, "\n")))
	switch w.level {
	case DebugLevel:
		w.logger.Debug(msg, Component("stdlib"))
	case WarnLevel:
		w.logger.Warn(msg, Component("stdlib"))
	case ErrorLevel, FatalLevel:
		w.logger.Error(msg, Component("stdlib"))
	default:
		w.logger.Info(msg, Component("stdlib"))
	}
	return len(p), nil
}

// ToStdLogger adapts logger for APIs that want a *log.Logger (http.Server.ErrorLog).
func ToStdLogger(logger Logger, level Level) *stdlog.Logger {
	return stdlog.New(stdWriter{logger: logger, level: level}, "", 0)
}

// RedirectStdLog routes the standard library's global logger through logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdWriter{logger: logger, level: InfoLevel})
}
