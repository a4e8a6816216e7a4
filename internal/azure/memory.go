package azure

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MemoryBlobStorage keeps reports in process memory. It serves local
// development without an Azure account and tests.
type MemoryBlobStorage struct {
	mu      sync.RWMutex
	storage map[string][]byte
	logger  *zap.Logger
}

// NewMemoryBlobStorage creates an empty in-memory store
func NewMemoryBlobStorage(logger *zap.Logger) *MemoryBlobStorage {
	return &MemoryBlobStorage{
		storage: make(map[string][]byte),
		logger:  logger,
	}
}

// UploadPDF stores a copy of data
func (m *MemoryBlobStorage) UploadPDF(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	blobName := reportBlobName(filename)
	m.mu.Lock()
	m.storage[blobName] = append([]byte(nil), data...)
	m.mu.Unlock()

	m.logger.Debug("report stored in memory", zap.String("blob_name", blobName), zap.Int("size_bytes", len(data)))
	return blobName, nil
}

// DownloadPDF returns a copy of a stored report
func (m *MemoryBlobStorage) DownloadPDF(ctx context.Context, blobName string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.storage[blobName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", blobName, ErrBlobNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Len reports how many blobs are stored
func (m *MemoryBlobStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.storage)
}
