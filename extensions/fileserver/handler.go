package fileserver

import (
	"net/http"
)

const (
	AllowOrigin  = "*"
	AllowMethods = "GET, OPTIONS"
	AllowHeaders = "*"
)

const allowedMethods = "GET, HEAD, OPTIONS"

// NewHandler serves root with CORS headers on every response. A nil logger
// disables request logging.
func NewHandler(root http.FileSystem, logger RequestLogger) http.Handler {
	handler := CORS(Methods(http.FileServer(root)))
	if logger != nil {
		handler = LogRequests(handler, logger)
	}
	return handler
}

// CORS sets the permissive cross-origin headers before next writes anything,
// so they survive error replies and redirects.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", AllowOrigin)
		header.Set("Access-Control-Allow-Methods", AllowMethods)
		header.Set("Access-Control-Allow-Headers", AllowHeaders)
		next.ServeHTTP(w, r)
	})
}

// Methods passes GET and HEAD to next, answers OPTIONS preflights itself and
// rejects everything else with 501.
func Methods(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			next.ServeHTTP(w, r)
		case http.MethodOptions:
			w.Header().Set("Allow", allowedMethods)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Allow", allowedMethods)
			http.Error(w, "Unsupported method ('"+r.Method+"')", http.StatusNotImplemented)
		}
	})
}
