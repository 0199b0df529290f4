package middleware

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// StreamingTimeout bounds file transfers without buffering the response.
// maxDuration caps the whole request; idleTimeout cancels it when neither side
// has moved data for that long.
func StreamingTimeout(maxDuration time.Duration, idleTimeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), maxDuration)
			defer cancel()

			rc := http.NewResponseController(w)
			deadline := time.Now().Add(maxDuration)
			_ = rc.SetWriteDeadline(deadline)
			_ = rc.SetReadDeadline(deadline)

			watch := &idleWatch{rc: rc, timeout: idleTimeout, cancel: cancel}
			watch.touch()
			defer watch.stop()

			if r.Body != nil {
				r.Body = &idleBody{ReadCloser: r.Body, watch: watch}
			}

			next.ServeHTTP(&idleWriter{ResponseWriter: w, watch: watch}, r.WithContext(ctx))
		})
	}
}

type idleWatch struct {
	rc      *http.ResponseController
	timeout time.Duration
	cancel  context.CancelFunc

	mu    sync.Mutex
	timer *time.Timer
}

func (iw *idleWatch) touch() {
	if iw.timeout <= 0 {
		return
	}

	iw.mu.Lock()
	defer iw.mu.Unlock()

	if iw.timer != nil {
		iw.timer.Reset(iw.timeout)
		return
	}
	iw.timer = time.AfterFunc(iw.timeout, func() {
		_ = iw.rc.SetWriteDeadline(time.Now())
		iw.cancel()
	})
}

func (iw *idleWatch) stop() {
	iw.mu.Lock()
	defer iw.mu.Unlock()
	if iw.timer != nil {
		iw.timer.Stop()
	}
}

type idleWriter struct {
	http.ResponseWriter
	watch *idleWatch
}

func (w *idleWriter) Write(b []byte) (int, error) {
	w.watch.touch()
	return w.ResponseWriter.Write(b)
}

func (w *idleWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *idleWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// idleBody counts upload progress as activity.
type idleBody struct {
	io.ReadCloser
	watch *idleWatch
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.watch.touch()
	}
	return n, err
}
