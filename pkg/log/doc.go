// Package log is flowerlove's structured logging facade.
//
// Logger exposes leveled methods that take Field values. Records are routed
// through a slog.Handler so the same formatter and outputs serve both the
// facade and any code holding a *slog.Logger (see BaseLogger.Slog).
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("watcher"), log.Str("profile_id", id))
//	l.Info("milestone reached", log.Int("days", 365))
//
// ApplyConfig builds a logger from a Config (level, text or json format,
// console/file/null outputs, key redaction, sampling). ToStdLogger and
// RedirectStdLog bridge code that writes to the standard library logger.
package log
