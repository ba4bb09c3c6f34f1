package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel changes the minimum level; unknown names leave the level unchanged.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, keeping current")
		return
	}
	log.SetLevel(lvl)
}

func Info(message string, fields Fields) {
	log.WithFields(fields).Info(message)
}

func Warn(message string, fields Fields) {
	log.WithFields(fields).Warn(message)
}

func Error(message string, err error, fields Fields) {
	entry := log.WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}

func Fatal(message string, err error) {
	log.WithError(err).Fatal(message)
}
