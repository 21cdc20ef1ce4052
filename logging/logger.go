package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is the logging interface accepted by all services.
// Both *logrus.Logger and *logrus.Entry satisfy it, so loggers
// enriched with WithField/WithFields can be passed around freely.
type Logger interface {
	logrus.FieldLogger
}

type DefaultLogger struct {
	*logrus.Logger
}

func New() *DefaultLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return &DefaultLogger{l}
}
