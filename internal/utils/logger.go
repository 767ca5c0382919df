package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// LogOptions controls ConfigureLogger. Empty Level means info and empty
// Format means text.
type LogOptions struct {
	App    string
	Level  string
	Format string
	Out    io.Writer
}

// InitLogger points the shared Logger at stdout, tuned by LOG_LEVEL and
// LOG_FORMAT (text or json).
func InitLogger(appName string) {
	ConfigureLogger(Logger, LogOptions{
		App:    appName,
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		Out:    os.Stdout,
	})
}

// ConfigureLogger may be called more than once; each call replaces the
// previous hooks instead of stacking them.
func ConfigureLogger(l *logrus.Logger, opts LogOptions) {
	if opts.Out != nil {
		l.SetOutput(opts.Out)
	}

	jsonOut := strings.EqualFold(strings.TrimSpace(opts.Format), "json")
	if jsonOut {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	l.ReplaceHooks(make(logrus.LevelHooks))
	if opts.App != "" {
		l.AddHook(&serviceHook{app: opts.App, asField: jsonOut})
	}

	name := strings.ToLower(strings.TrimSpace(opts.Level))
	if name == "" {
		l.SetLevel(logrus.InfoLevel)
		return
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		l.Warnf("Invalid LOG_LEVEL %q, using info", opts.Level)
		return
	}
	l.SetLevel(level)
}

// serviceHook names the service on every entry: a "service" field in JSON,
// a bracketed prefix in text.
type serviceHook struct {
	app     string
	asField bool
}

func (h *serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	if h.asField {
		entry.Data["service"] = h.app
		return nil
	}
	entry.Message = "[" + h.app + "] " + entry.Message
	return nil
}
