package log

import (
	"bytes"
	"io"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sirupsen/logrus"
)

// DateTimeLayout is the access log timestamp, e.g. 18/Oct/2026 14:03:05.
const DateTimeLayout = "02/Jan/2006 15:04:05"

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel parses a level name and applies it to the standard logger.
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return E.New("unknown log level ", name)
	}
	logrus.SetLevel(level)
	return nil
}

func NewLogger(name string) *logrus.Entry {
	return logrus.StandardLogger().WithField("module", name)
}

// AccessFormatter renders entries as "[<time>] <message>", dropping level
// and fields.
type AccessFormatter struct{}

func (f *AccessFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}
	b.WriteByte('[')
	b.WriteString(entry.Time.Format(DateTimeLayout))
	b.WriteString("] ")
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// NewAccessLogger returns a logger writing access lines to w. Its level is
// independent of the standard logger.
func NewAccessLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&AccessFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}
