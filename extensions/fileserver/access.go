package fileserver

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/sirupsen/logrus"
)

// RequestLogger is called once per completed request.
type RequestLogger interface {
	LogRequest(r *http.Request, status int, written int64)
}

func LogRequests(next http.Handler, logger RequestLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)
		logger.LogRequest(r, metrics.Code, metrics.Written)
	})
}

// AccessLogger writes one request line per request, preceded by an error
// line for 4xx and 5xx replies:
//
//	[18/Oct/2026 14:03:05] code 404, message File not found
//	[18/Oct/2026 14:03:05] "GET /missing HTTP/1.1" 404 -
//
// The size column is always "-".
type AccessLogger struct {
	logger logrus.FieldLogger
}

func NewAccessLogger(logger logrus.FieldLogger) *AccessLogger {
	return &AccessLogger{logger: logger}
}

func (l *AccessLogger) LogRequest(r *http.Request, status int, _ int64) {
	if status >= http.StatusBadRequest {
		l.logger.Infof("code %d, message %s", status, errorMessage(status))
	}
	l.logger.Infof("\"%s %s %s\" %d -", r.Method, r.RequestURI, r.Proto, status)
}

func errorMessage(status int) string {
	if status == http.StatusNotFound {
		return "File not found"
	}
	return http.StatusText(status)
}
