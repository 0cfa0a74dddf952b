package deposit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matsen/proceedings/internal/paper"
)

const listing = `[
  {"id": 101, "doi": "10.5281/zenodo.101", "created": "2025-11-25T10:00:00",
   "metadata": {"title": "Beat Tracking"}, "files": [{"filename": "000001.pdf"}]},
  {"id": 102, "doi": "", "created": "2025-11-25T10:05:00",
   "metadata": {"title": "Draft"}, "files": [{"filename": "000002.pdf"}]},
  {"id": 103, "doi": "10.5281/zenodo.103", "created": "2025-11-24T09:00:00",
   "metadata": {"title": "Yesterday"}, "files": [{"filename": "000003.pdf"}]},
  {"id": 104, "doi": "10.5281/zenodo.104", "created": "2025-11-25T11:00:00",
   "metadata": {"title": "No files"}, "files": []}
]`

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deposit/depositions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("size"); got != "50" {
			t.Errorf("size = %q, want 50", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListDepositions(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, listing)
	c := NewClient(WithBaseURL(srv.URL), WithToken("secret"), WithRateLimit(100))

	deps, err := c.ListDepositions(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListDepositions() error = %v", err)
	}
	if len(deps) != 4 || deps[0].ID != 101 || deps[0].Files[0].Filename != "000001.pdf" {
		t.Errorf("depositions = %+v", deps)
	}
}

func TestListDepositionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, "", IsAuthError},
		{"rate limited", http.StatusTooManyRequests, "", func(err error) bool { return errors.Is(err, ErrRateLimited) }},
		{"server error", http.StatusInternalServerError, "boom", func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 500 && apiErr.Message == "boom"
		}},
		{"bad json", http.StatusOK, "{", func(err error) bool { return errors.Is(err, ErrInvalidResponse) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body)
			c := NewClient(WithBaseURL(srv.URL), WithToken("secret"), WithRateLimit(100))
			_, err := c.ListDepositions(context.Background(), 50)
			if err == nil || !tt.check(err) {
				t.Errorf("ListDepositions() error = %v", err)
			}
		})
	}
}

func TestListDepositionsRequiresToken(t *testing.T) {
	t.Setenv(TokenEnv, "")
	_, err := NewClient(WithBaseURL("http://127.0.0.1:0")).ListDepositions(context.Background(), 0)
	if !IsAuthError(err) {
		t.Errorf("ListDepositions() error = %v, want auth error", err)
	}
}

func TestListDepositionsHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(WithBaseURL("http://127.0.0.1:0"), WithToken("secret"), WithRateLimit(0.001))
	c.limiter.Allow()
	if _, err := c.ListDepositions(ctx, 1); err == nil {
		t.Error("ListDepositions() expected error for cancelled context")
	}
}

func TestUploadedFiles(t *testing.T) {
	c := NewClient(WithBaseURL(newTestServer(t, http.StatusOK, listing).URL), WithToken("secret"), WithRateLimit(100))
	deps, err := c.ListDepositions(context.Background(), 50)
	if err != nil {
		t.Fatal(err)
	}

	all := UploadedFiles(deps, "")
	if len(all) != 2 {
		t.Errorf("UploadedFiles() = %v, want 000001.pdf and 000003.pdf", all)
	}
	today := UploadedFiles(deps, "2025-11-25")
	if len(today) != 1 || today["000001.pdf"].ZenodoID != 101 {
		t.Errorf("UploadedFiles(2025-11-25) = %v", today)
	}
}

func TestPartition(t *testing.T) {
	recs := []*paper.Record{
		{Title: "Beat Tracking", EE: "https://archives.ismir.net/ismir2025/paper/000001.pdf"},
		{Title: "Chords", EE: "https://archives.ismir.net/ismir2025/paper/000002.pdf"},
	}
	uploaded := map[string]Upload{"000001.pdf": {ZenodoID: 101, DOI: "10.5281/zenodo.101"}}

	completed, remaining, err := Partition(recs, uploaded)
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	if len(completed) != 1 || len(remaining) != 1 || remaining[0].Title != "Chords" {
		t.Fatalf("completed = %d, remaining = %v", len(completed), remaining)
	}

	got := completed[0]
	if got.ZenodoID != 101 || got.DOI != "10.5281/zenodo.101" || got.URL != "https://doi.org/10.5281/zenodo.101" {
		t.Errorf("completed record = %+v", got)
	}
	if got.EE != "https://zenodo.org/record/101/files/000001.pdf" {
		t.Errorf("EE = %q", got.EE)
	}
	if recs[0].ZenodoID != 0 {
		t.Error("Partition modified its input")
	}

	if _, _, err := Partition([]*paper.Record{{Title: "No link"}}, uploaded); err == nil {
		t.Error("Partition() expected error for record without ee")
	}
}
