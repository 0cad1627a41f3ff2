package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %q, want /transcribe", r.URL.Path)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		payload, _ := io.ReadAll(file)
		if string(payload) != "fake-wav-bytes" {
			t.Errorf("payload = %q", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  I optimized the query planner.  "}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL)
	got, err := tr.Transcribe(context.Background(), []byte("fake-wav-bytes"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "I optimized the query planner." {
		t.Errorf("Transcribe = %q", got)
	}
}

func TestHTTPTranscriberServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewHTTPTranscriber(srv.URL)
	if _, err := tr.Transcribe(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error on 503 response")
	}
}
