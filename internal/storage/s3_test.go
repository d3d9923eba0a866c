package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// newTestStore builds an S3Store with static credentials; presigning is
// pure computation, so nothing here talks to the network.
func newTestStore(t *testing.T, uploadTTL time.Duration) *S3Store {
	t.Helper()
	client := s3.NewFromConfig(aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIATEST", "secret", ""),
	})
	return NewWithClient(client, "evolvesprouts-assets", uploadTTL)
}

func TestPresignUpload(t *testing.T) {
	store := newTestStore(t, 10*time.Minute)
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ticket, err := store.PresignUpload(context.Background(), "assets/a-1/x-file.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("presign upload: %v", err)
	}

	if ticket.Method != "PUT" {
		t.Fatalf("expected PUT got %q", ticket.Method)
	}
	if ticket.Headers["Content-Type"] != "application/pdf" {
		t.Fatalf("expected content-type header, got %v", ticket.Headers)
	}
	if want := now.Add(10 * time.Minute); !ticket.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v got %v", want, ticket.ExpiresAt)
	}

	parsed, err := url.Parse(ticket.URL)
	if err != nil {
		t.Fatalf("parse presigned url: %v", err)
	}
	if !strings.Contains(parsed.Host, "evolvesprouts-assets") {
		t.Fatalf("expected bucket in host, got %q", parsed.Host)
	}
	if !strings.HasSuffix(parsed.Path, "/assets/a-1/x-file.pdf") {
		t.Fatalf("unexpected path %q", parsed.Path)
	}
	query := parsed.Query()
	if query.Get("X-Amz-Signature") == "" {
		t.Fatal("expected X-Amz-Signature query parameter")
	}
	if query.Get("X-Amz-Expires") != "600" {
		t.Fatalf("expected 600 second expiry got %q", query.Get("X-Amz-Expires"))
	}
}

func TestPresignUploadNormalizesKey(t *testing.T) {
	store := newTestStore(t, 0)

	ticket, err := store.PresignUpload(context.Background(), "  /assets/a-1/file.bin", "")
	if err != nil {
		t.Fatalf("presign upload: %v", err)
	}
	if strings.Contains(ticket.URL, "//assets") {
		t.Fatalf("expected normalized key in %q", ticket.URL)
	}
	if len(ticket.Headers) != 0 {
		t.Fatalf("expected no headers without content type, got %v", ticket.Headers)
	}

	if _, err := store.PresignUpload(context.Background(), "   ", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestClampUploadTTL(t *testing.T) {
	cases := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"zero uses default", 0, DefaultUploadTTL},
		{"below minimum", time.Second, minUploadTTL},
		{"above maximum", 2 * time.Hour, maxUploadTTL},
		{"in range", 30 * time.Minute, 30 * time.Minute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampUploadTTL(tc.ttl); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}
