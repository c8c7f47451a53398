// Package fetch retrieves image bytes for the editor.
//
// Remote URLs are fetched over HTTP with browser-like CORS semantics: a
// cross-origin request in CORS mode only succeeds when the response grants
// the editor's origin via Access-Control-Allow-Origin. Embedded data: URLs
// and local files are resolved in-process and never need CORS.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var (
	// ErrCORS is returned when a CORS-mode response does not grant the origin.
	ErrCORS = errors.New("cors: origin not allowed")
	// ErrTooLarge is returned when a response body exceeds Config.MaxBytes.
	ErrTooLarge = errors.New("response too large")
)

// Mode selects how a remote request is made.
type Mode int

const (
	// ModeCORS sends an Origin header and requires a matching
	// Access-Control-Allow-Origin for cross-origin URLs.
	ModeCORS Mode = iota
	// ModeNoCORS fetches without the handshake. A cross-origin result is
	// opaque to the editor and taints whatever surface it is drawn on.
	ModeNoCORS
)

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // HTTP timeout. Default: 15s.
	MaxBytes  int64         // Max response body size. Default: 20MB.
	UserAgent string
	// Origin is the editor's own origin, e.g. "https://studio.example.com".
	// URLs on this origin are same-origin and skip the CORS check.
	Origin string
	// Client overrides the HTTP client (tests).
	Client *http.Client
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 20 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "golayers/1.0"
	}
}

// Result contains the outcome of a fetch.
type Result struct {
	Body        []byte
	ContentType string
	// CrossOrigin is true when the bytes came from another origin without a
	// successful CORS handshake.
	CrossOrigin bool
}

// Fetcher resolves image URLs.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		}
	}
	return &Fetcher{client: client, config: cfg}
}

// Origin returns the configured editor origin.
func (f *Fetcher) Origin() string { return f.config.Origin }

// IsEmbedded reports whether rawURL carries its data inline.
func IsEmbedded(rawURL string) bool {
	return strings.HasPrefix(strings.ToLower(rawURL), "data:")
}

// IsRemote reports whether rawURL is fetched over HTTP.
func IsRemote(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// SameOrigin reports whether rawURL shares scheme and host with the editor
// origin. Non-remote URLs are always same-origin.
func (f *Fetcher) SameOrigin(rawURL string) bool {
	if !IsRemote(rawURL) {
		return true
	}
	if f.config.Origin == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	o, oerr := url.Parse(f.config.Origin)
	if err != nil || oerr != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, o.Scheme) && strings.EqualFold(u.Host, o.Host)
}

// Fetch retrieves rawURL. data: URLs are decoded, file paths and file://
// URLs are read from disk, http(s) URLs are requested in the given mode.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, mode Mode) (*Result, error) {
	switch {
	case rawURL == "":
		return nil, errors.New("empty url")
	case IsEmbedded(rawURL):
		body, ct, err := DecodeDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		return &Result{Body: body, ContentType: ct}, nil
	case IsRemote(rawURL):
		return f.fetchHTTP(ctx, rawURL, mode)
	default:
		path := strings.TrimPrefix(rawURL, "file://")
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return &Result{Body: body}, nil
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string, mode Mode) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	sameOrigin := f.SameOrigin(rawURL)
	cors := mode == ModeCORS && !sameOrigin
	if cors && f.config.Origin != "" {
		req.Header.Set("Origin", f.config.Origin)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	if cors && !allowsOrigin(resp.Header.Get("Access-Control-Allow-Origin"), f.config.Origin) {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrCORS)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", rawURL, ErrTooLarge, f.config.MaxBytes)
	}

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		CrossOrigin: !sameOrigin && !cors,
	}, nil
}

func allowsOrigin(header, origin string) bool {
	header = strings.TrimSpace(header)
	if header == "*" {
		return true
	}
	return origin != "" && strings.EqualFold(header, origin)
}
