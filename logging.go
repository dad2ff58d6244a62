package gridparticles

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	entry *logrus.Entry
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewDefaultLoggerTo(os.Stderr, prefix, debug)
}

// NewDefaultLoggerTo is NewDefaultLogger writing to w.
func NewDefaultLoggerTo(w io.Writer, prefix string, debug bool) *DefaultLogger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	base.SetLevel(logrus.DebugLevel)

	entry := logrus.NewEntry(base)
	if prefix != "" {
		entry = entry.WithField("component", prefix)
	}
	return &DefaultLogger{
		debug: debug,
		entry: entry,
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

// SetLevel sets the minimum level below debug; "debug" also enables debug output.
func (l *DefaultLogger) SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if lvl >= logrus.DebugLevel {
		l.SetDebug(true)
		lvl = logrus.DebugLevel
	}
	l.entry.Logger.SetLevel(lvl)
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.entry.Debugf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

// LoggingModule installs a default logger as a resource.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Level  string
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	logger := NewDefaultLogger(m.Prefix, m.Debug)
	// Debug wins over a coarser level.
	if m.Level != "" && !m.Debug {
		logger.SetLevel(m.Level)
	}
	app.addResources(logger)
}

// Nop logger and App helper accessor

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
