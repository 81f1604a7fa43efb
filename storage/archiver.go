package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ReportArchiver stores JSON reports of transfer batches.
type ReportArchiver struct {
	uploader FileUploader
	now      func() time.Time
}

func NewReportArchiver(uploader FileUploader) *ReportArchiver {
	return &ReportArchiver{uploader: uploader, now: time.Now}
}

// TransferReportKey returns transfers/club_{id}/{timestamp}_{batch}.json.
func TransferReportKey(clubID int, batchID string, at time.Time) string {
	return fmt.Sprintf("transfers/club_%d/%s_%s.json", clubID, at.UTC().Format("20060102T150405Z"), batchID)
}

func (a *ReportArchiver) ArchiveTransferReport(ctx context.Context, clubID int, batchID string, report interface{}) (*UploadResult, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer report: %w", err)
	}
	key := TransferReportKey(clubID, batchID, a.now())
	return a.uploader.Upload(ctx, key, ContentTypeJSON, bytes.NewReader(body))
}
