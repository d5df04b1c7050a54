// Package logrus adapts a *logrus.Entry to recordio.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/recordio"
)

var _ recordio.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New wraps l with a component=recordio field.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "recordio")}
}

func (l Logger) Debug(msg string, f recordio.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f recordio.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f recordio.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f recordio.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f recordio.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
