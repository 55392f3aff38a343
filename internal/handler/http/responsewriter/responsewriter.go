// Package responsewriter captures the status code and body size of a
// response as it passes through the middleware chain. The logging,
// metrics and tracing layers all read from the same wrapper.
package responsewriter

import "net/http"

// ResponseWriter decorates an http.ResponseWriter and remembers what
// was sent through it.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written int
	sent    bool
}

// Wrap returns a recording writer around w. Until a header goes out
// the status reads as 200, matching net/http's implicit default.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards the first status code and drops the rest, so a
// handler that writes twice cannot corrupt the recorded value.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.sent {
		return
	}
	w.status = status
	w.sent = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.sent {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// StatusCode reports the status sent to the client.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten reports the body size sent so far.
func (w *ResponseWriter) BytesWritten() int { return w.written }

// Unwrap exposes the inner writer so http.ResponseController still
// reaches Flush and friends through the wrapper.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
