package log

import (
	"fmt"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Level mirrors logrus levels so that callers never import logrus directly.
type Level uint8

const (
	PanicLevel Level = Level(logrus.PanicLevel)
	FatalLevel Level = Level(logrus.FatalLevel)
	ErrorLevel Level = Level(logrus.ErrorLevel)
	WarnLevel  Level = Level(logrus.WarnLevel)
	InfoLevel  Level = Level(logrus.InfoLevel)
	DebugLevel Level = Level(logrus.DebugLevel)
)

func (lvl Level) String() string {
	return logrus.Level(lvl).String()
}

// ParseLevel parses a level name ("debug", "info", ...).
func ParseLevel(s string) (Level, error) {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return Level(lvl), nil
}
