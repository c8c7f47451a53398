// dataurl.go - Embeddable data: URLs.
package fetch

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// EncodeDataURL returns a base64 data: URL for body.
func EncodeDataURL(mimeType string, body []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(body)
}

// DecodeDataURL parses a data: URL and returns its payload and media type.
// Both base64 and percent-encoded payloads are supported.
func DecodeDataURL(raw string) ([]byte, string, error) {
	if !IsEmbedded(raw) {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URL: missing ','")
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	mimeType := meta
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if isBase64 {
		body, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop padding.
			if body, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, "", fmt.Errorf("decode base64 payload: %w", err)
			}
		}
		return body, mimeType, nil
	}

	body, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode payload: %w", err)
	}
	return []byte(body), mimeType, nil
}
