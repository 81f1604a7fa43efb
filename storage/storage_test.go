package storage

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"
)

type captureUploader struct {
	key         string
	contentType string
	body        []byte
}

func (u *captureUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*UploadResult, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.key, u.contentType, u.body = key, contentType, body
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *captureUploader) GetPublicURL(key string) string {
	return publicURL("https://files.padel.club/", key)
}

func TestTransferReportKey(t *testing.T) {
	at := time.Date(2026, 3, 9, 18, 4, 5, 0, time.FixedZone("CET", 3600))
	got := TransferReportKey(7, "b1", at)
	if want := "transfers/club_7/20260309T170405Z_b1.json"; got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}

func TestReportArchiver(t *testing.T) {
	uploader := &captureUploader{}
	archiver := NewReportArchiver(uploader)
	archiver.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	res, err := archiver.ArchiveTransferReport(context.Background(), 3, "batch-9", map[string]int{"processed": 2})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if res.Key != "transfers/club_3/20260102T030405Z_batch-9.json" || uploader.contentType != "application/json" {
		t.Errorf("unexpected upload: %+v (%s)", res, uploader.contentType)
	}
	if res.Location != "https://files.padel.club/"+res.Key {
		t.Errorf("location = %q", res.Location)
	}
	var report map[string]int
	if err := json.Unmarshal(uploader.body, &report); err != nil || report["processed"] != 2 {
		t.Errorf("report body = %s, %v", uploader.body, err)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct{ base, key, want string }{
		{"https://cdn.example/", "/a/b.json", "https://cdn.example/a/b.json"},
		{"https://cdn.example", "a.json", "https://cdn.example/a.json"},
		{"", "a.json", ""},
		{"https://cdn.example", "", ""},
	}
	for _, tt := range tests {
		if got := publicURL(tt.base, tt.key); got != tt.want {
			t.Errorf("publicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestCloudflareR2UploaderConfig_Enabled(t *testing.T) {
	full := CloudflareR2UploaderConfig{AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret", BucketName: "reports"}
	if !full.Enabled() {
		t.Error("complete config must be enabled")
	}
	partial := full
	partial.BucketName = ""
	if partial.Enabled() {
		t.Error("config without bucket must be disabled")
	}
	if _, err := NewCloudflareR2Uploader(context.Background(), partial); err == nil {
		t.Error("expected error for partial config")
	}
}
