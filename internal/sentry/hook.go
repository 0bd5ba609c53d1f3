// Package sentry contains a logrus hook which forwards error entries to Sentry.
package sentry

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Hook implements logrus.Hook.
type Hook struct {
	levels []logrus.Level
}

// Options ...
type Options struct {
	DSN        string
	Release    string
	ServerName string
}

// NewHook initializes the sentry client and returns a hook for the given levels.
func NewHook(o Options, levels ...logrus.Level) (*Hook, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              o.DSN,
		Release:          o.Release,
		ServerName:       o.ServerName,
		AttachStacktrace: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	return &Hook{levels: levels}, nil
}

// Levels ...
func (h Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire ...
func (h Hook) Fire(e *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Level = toSentryLevel(e.Level)
	event.Message = e.Message
	event.Timestamp = e.Time

	for k, v := range e.Data {
		if k == logrus.ErrorKey {
			event.Message = fmt.Sprintf("%s: %v", e.Message, v)
			continue
		}
		event.Extra[k] = v
	}

	sentry.CaptureEvent(event)

	return nil
}

func toSentryLevel(l logrus.Level) sentry.Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return sentry.LevelFatal
	case logrus.ErrorLevel:
		return sentry.LevelError
	default:
		return sentry.LevelWarning
	}
}
