package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the storage backend for off-site artifacts.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// SnapshotArchiver ships finalization snapshots to the bucket, keyed by
// tournament and finalization time so repeated runs never overwrite history.
type SnapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader}
}

func (a *SnapshotArchiver) ArchiveSnapshot(ctx context.Context, tournamentID int, payload []byte) (string, error) {
	key := fmt.Sprintf("snapshots/tournament_%d_%d.json", tournamentID, time.Now().UTC().Unix())
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
