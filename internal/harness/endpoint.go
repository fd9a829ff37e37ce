package harness

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/roach88/recon/internal/transport"
)

// endpoint is an in-process processing server answering from a script.
type endpoint struct {
	srv       *httptest.Server
	url       string
	replies   []Reply
	mu        sync.Mutex
	labels    []string
	requests  int
	release   chan struct{}
	releaseMu sync.Once
}

func newEndpoint(cfg Endpoint) *endpoint {
	e := &endpoint{
		replies: cfg.Responses,
		release: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+transport.ProcessPath, e.process)
	e.srv = httptest.NewServer(mux)
	e.url = e.srv.URL

	if cfg.Unreachable {
		// Keep the address, drop the listener.
		e.srv.Close()
	}
	return e
}

func (e *endpoint) process(w http.ResponseWriter, r *http.Request) {
	label := ""
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		label = r.FormValue(transport.FieldLabel)
	}

	e.mu.Lock()
	idx := e.requests
	e.requests++
	e.labels = append(e.labels, label)
	e.mu.Unlock()

	if idx >= len(e.replies) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"unscripted request"}`)
		return
	}
	reply := e.replies[idx]
	if reply.Hold {
		<-e.release
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	io.WriteString(w, reply.Body)
}

// Release lets held replies answer. Later held replies answer at once.
func (e *endpoint) Release() {
	e.releaseMu.Do(func() { close(e.release) })
}

// Stats returns the request count and received labels.
func (e *endpoint) Stats() (int, []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	labels := make([]string, len(e.labels))
	copy(labels, e.labels)
	return e.requests, labels
}

// Close releases held replies and shuts the server down.
func (e *endpoint) Close() {
	e.Release()
	e.srv.Close()
}
