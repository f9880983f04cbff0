package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestReceiptKey(t *testing.T) {
	at := time.Date(2026, 3, 1, 18, 30, 5, 0, time.FixedZone("AST", 3*3600))
	got := ReceiptKey(42, at)
	if got != "receipts/session-42/20260301T153005Z.pdf" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestNewObjectStoreValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "missing endpoint", cfg: Config{Bucket: "b"}},
		{name: "missing bucket", cfg: Config{Endpoint: "s3.example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewObjectStore(context.Background(), tc.cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	store, err := NewObjectStore(context.Background(), Config{
		Endpoint:      "s3.example.com",
		Bucket:        "kiosk",
		PublicBaseURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := store.PublicURL("/receipts/a.pdf"); got != "https://cdn.example.com/receipts/a.pdf" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestPresignWithoutPublicBase(t *testing.T) {
	store, err := NewObjectStore(context.Background(), Config{
		Endpoint:        "http://127.0.0.1:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "kiosk",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.PublicURL("x") != "" {
		t.Fatalf("expected no public url")
	}

	url, err := store.PresignGetObject(context.Background(), "receipts/session-1/a.pdf", time.Minute)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "http://127.0.0.1:9000/kiosk/receipts/session-1/a.pdf?") {
		t.Fatalf("unexpected presigned url %q", url)
	}
	if !strings.Contains(url, "X-Amz-Signature=") {
		t.Fatalf("expected signed url, got %q", url)
	}
}
