package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const editorOrigin = "https://studio.example.com"

func TestFetch_CORSGranted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") != editorOrigin {
			t.Errorf("origin header = %q", r.Header.Get("Origin"))
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	f := New(Config{Origin: editorOrigin})
	res, err := f.Fetch(context.Background(), srv.URL+"/a.png", ModeCORS)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(res.Body) != "img" || res.CrossOrigin {
		t.Errorf("result = %q crossOrigin=%v", res.Body, res.CrossOrigin)
	}
}

func TestFetch_CORSDeniedThenOpaque(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	f := New(Config{Origin: editorOrigin})
	_, err := f.Fetch(context.Background(), srv.URL, ModeCORS)
	if !errors.Is(err, ErrCORS) {
		t.Fatalf("err = %v, want ErrCORS", err)
	}

	res, err := f.Fetch(context.Background(), srv.URL, ModeNoCORS)
	if err != nil {
		t.Fatalf("no-cors fetch: %v", err)
	}
	if !res.CrossOrigin {
		t.Error("no-cors cross-origin result should be marked cross-origin")
	}
}

func TestFetch_SameOriginSkipsCORS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") != "" {
			t.Errorf("same-origin request sent Origin %q", r.Header.Get("Origin"))
		}
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	f := New(Config{Origin: srv.URL})
	res, err := f.Fetch(context.Background(), srv.URL+"/x.png", ModeCORS)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.CrossOrigin {
		t.Error("same-origin result marked cross-origin")
	}
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := New(Config{})
	if _, err := f.Fetch(context.Background(), srv.URL, ModeNoCORS); err == nil {
		t.Error("expected error for 404")
	}
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	if _, err := New(Config{MaxBytes: 9}).Fetch(context.Background(), srv.URL, ModeNoCORS); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
	res, err := New(Config{MaxBytes: 10}).Fetch(context.Background(), srv.URL, ModeNoCORS)
	if err != nil {
		t.Fatalf("body at the limit: %v", err)
	}
	if string(res.Body) != "0123456789" {
		t.Errorf("body = %q", res.Body)
	}
}

func TestFetch_LocalFileAndDataURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, []byte("local"), 0644); err != nil {
		t.Fatal(err)
	}
	f := New(Config{Origin: editorOrigin})

	res, err := f.Fetch(context.Background(), path, ModeCORS)
	if err != nil || string(res.Body) != "local" || res.CrossOrigin {
		t.Errorf("local file = %v, %v", res, err)
	}

	res, err = f.Fetch(context.Background(), EncodeDataURL("image/png", []byte("inline")), ModeCORS)
	if err != nil || string(res.Body) != "inline" || res.ContentType != "image/png" {
		t.Errorf("data url = %v, %v", res, err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		in   string
		body string
		mime string
		ok   bool
	}{
		{"data:image/png;base64,aGVsbG8=", "hello", "image/png", true},
		{"data:image/png;base64,aGVsbG8", "hello", "image/png", true},
		{"data:,hi%20there", "hi there", "text/plain", true},
		{"data:image/svg+xml;charset=utf-8,%3Csvg%3E", "<svg>", "image/svg+xml", true},
		{"data:image/png;base64", "", "", false},
		{"https://example.com/a.png", "", "", false},
	}
	for _, tt := range tests {
		body, mime, err := DecodeDataURL(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("DecodeDataURL(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && (string(body) != tt.body || mime != tt.mime) {
			t.Errorf("DecodeDataURL(%q) = %q, %q", tt.in, body, mime)
		}
	}
}

func TestSameOrigin(t *testing.T) {
	f := New(Config{Origin: editorOrigin})
	tests := map[string]bool{
		"https://studio.example.com/a.png": true,
		"https://cdn.example.com/a.png":    false,
		"http://studio.example.com/a.png":  false,
		"data:image/png;base64,AA==":       true,
		"/tmp/logo.png":                    true,
	}
	for u, want := range tests {
		if got := f.SameOrigin(u); got != want {
			t.Errorf("SameOrigin(%q) = %v, want %v", u, got, want)
		}
	}
}
