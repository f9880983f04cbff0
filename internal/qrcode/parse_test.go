package qrcode

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		expected string
		err      error
	}{
		{name: "landing url", payload: "https://menu.example.com/table/QR-12", expected: "QR-12"},
		{name: "landing url trailing slash", payload: "https://menu.example.com/qr/QR-12/", expected: "QR-12"},
		{name: "bare code", payload: "QR-12", expected: "QR-12"},
		{name: "relative table path", payload: "/table/abc123", expected: "abc123"},
		{name: "host only url", payload: "https://menu.example.com/", err: ErrInvalidQR},
		{name: "random text", payload: "hello", err: ErrInvalidQR},
		{name: "empty", payload: "   ", err: ErrInvalidQR},
		{name: "empty table segment", payload: "table/", err: ErrInvalidQR},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.payload)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v (%q)", tc.err, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
