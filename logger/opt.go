package logger

import "log"

// A LoggerOptFn is a functional option configuring a PortariaLogger when constructing a new one.
type LoggerOptFn func(*PortariaLogger)

// WithEnv sets the environment PortariaLogger is operating in.
func WithEnv(env string) func(*PortariaLogger) {
	return func(l *PortariaLogger) {
		l.env = env
	}
}

// WithLevel sets the log level PortariaLogger uses.
func WithLevel(level LogLevel) func(*PortariaLogger) {
	return func(l *PortariaLogger) {
		l.ll = level
	}
}

// WithLogger sets the log.Logger PortariaLogger uses.
func WithLogger(log *log.Logger) func(*PortariaLogger) {
	return func(l *PortariaLogger) {
		l.l = log
	}
}

// WithSkip sets the number of frames in the call stack
// to skip in order to log the desired file and line number
// of the calling code.
func WithSkip(skip int) func(*PortariaLogger) {
	return func(l *PortariaLogger) {
		l.skip = skip
	}
}
