package azure

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when a stored report no longer exists
var ErrBlobNotFound = errors.New("blob not found")

// ReportStorage stores generated report PDFs
type ReportStorage interface {
	UploadPDF(ctx context.Context, filename string, data []byte) (string, error)
	DownloadPDF(ctx context.Context, blobName string) ([]byte, error)
}

var (
	_ ReportStorage = (*BlobStorageClient)(nil)
	_ ReportStorage = (*MemoryBlobStorage)(nil)
)

func reportBlobName(filename string) string {
	return "reports/" + filename
}
