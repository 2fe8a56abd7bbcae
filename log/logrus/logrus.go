package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/synccache"
)

var _ synccache.Logger = Logger{}

// Logger adapts a logrus entry. Every line carries component=synccache.
type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "synccache")}
}

func (l Logger) Debug(msg string, f synccache.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f synccache.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f synccache.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f synccache.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
