package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeServer is a processing service with a scripted /process answer and
// an in-memory /download store.
type fakeServer struct {
	*httptest.Server

	status int
	body   string
	files  map[string]string

	mu        sync.Mutex
	requests  int
	labels    []string
	filenames []string
}

const successBody = `{"message":"Processing Complete","current_file":"a.xlsx","prev_file":"b.xlsx","summary_file":"c.xlsx"}`

func newFakeServer(t *testing.T, status int, body string) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		status: status,
		body:   body,
		files: map[string]string{
			"a.xlsx": "primary workbook",
			"b.xlsx": "secondary workbook",
			"c.xlsx": "summary workbook",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fs.mu.Lock()
		fs.requests++
		fs.labels = append(fs.labels, r.FormValue("month"))
		for _, field := range []string{"file_current", "file_prev"} {
			if _, hdr, err := r.FormFile(field); err == nil {
				fs.filenames = append(fs.filenames, hdr.Filename)
			}
		}
		fs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fs.status)
		_, _ = io.WriteString(w, fs.body)
	})
	mux.HandleFunc("GET /download/{token}", func(w http.ResponseWriter, r *http.Request) {
		content, ok := fs.files[r.PathValue("token")]
		if !ok {
			http.Error(w, `{"error":"File not found"}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, content)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) stats() (int, []string, []string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests, append([]string(nil), fs.labels...), append([]string(nil), fs.filenames...)
}
