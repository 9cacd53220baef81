package logging

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns the request logger writing through a RotatingWriter,
// plus the writer itself so the caller can close it.
func New(path string, maxSize int64) (*logrus.Logger, io.Closer, error) {
	w, err := NewRotatingWriter(path, maxSize)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   true,
	})
	logger.SetLevel(logrus.InfoLevel)

	return logger, w, nil
}

// Discard returns a logger that writes nothing, for tests and for
// runs with no log file configured.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
