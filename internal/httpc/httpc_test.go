package httpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("frame"))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	body, err := GetBytes(context.Background(), nil, srv.URL+"/ok")
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if string(body) != "frame" {
		t.Errorf("body = %q, want %q", body, "frame")
	}

	_, err = GetBytes(context.Background(), nil, srv.URL+"/missing")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}
	if se.Method != http.MethodGet || !strings.HasPrefix(se.Error(), "GET ") {
		t.Errorf("error = %q, want a GET status error", se.Error())
	}
}

func TestGetBytes_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := NewClient(50 * time.Millisecond)
	start := time.Now()
	if _, err := GetBytes(context.Background(), client, srv.URL); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timeout took %v, want well under 500ms", elapsed)
	}
}

func TestPostJSON(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	if err := PostJSON(context.Background(), nil, srv.URL+"/servo", []byte(`{"angle":18}`)); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if got != `{"angle":18}` {
		t.Errorf("server got %q", got)
	}

	err := PostJSON(context.Background(), nil, srv.URL+"/fail", []byte(`{}`))
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError for 500 response, got %v", err)
	}
	if se.Method != http.MethodPost || !strings.HasPrefix(se.Error(), "POST ") {
		t.Errorf("error = %q, want a POST status error", se.Error())
	}
}
