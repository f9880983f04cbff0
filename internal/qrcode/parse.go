package qrcode

import (
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidQR = errors.New("invalid table QR code")

// Parse extracts the table code from a scanned payload. Printed codes are
// either a landing URL ending in the code, a bare "QR-..." code, or a path
// containing "table/<code>".
func Parse(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrInvalidQR
	}

	if u, err := url.Parse(payload); err == nil && u.Scheme != "" && u.Host != "" {
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		code := segments[len(segments)-1]
		if code == "" {
			return "", ErrInvalidQR
		}
		return code, nil
	}

	if idx := strings.Index(payload, "table/"); idx >= 0 {
		code := strings.Trim(payload[idx+len("table/"):], "/")
		if code == "" || strings.Contains(code, "/") {
			return "", ErrInvalidQR
		}
		return code, nil
	}

	if strings.HasPrefix(payload, "QR-") {
		return payload, nil
	}
	return "", ErrInvalidQR
}
