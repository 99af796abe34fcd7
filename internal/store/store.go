// File: internal/store/store.go
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

const (
	narrativeExt = ".md"
	payloadExt   = ".json"
)

// FileStore persists report artifacts as flat files under a single
// directory, one pair of files per task id. It is the default backend.
type FileStore struct {
	dir string
	log *zap.Logger
}

// NewFileStore creates the artifact directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}
	return &FileStore{
		dir: dir,
		log: logger.Named("store"),
	}, nil
}

// SaveNarrative implements schemas.ArtifactStore.
func (s *FileStore) SaveNarrative(_ context.Context, taskID string, doc []byte) error {
	return s.write(taskID, narrativeExt, doc)
}

// Narrative implements schemas.ArtifactStore.
func (s *FileStore) Narrative(_ context.Context, taskID string) ([]byte, error) {
	return s.read(taskID, narrativeExt)
}

// SavePayload implements schemas.ArtifactStore.
func (s *FileStore) SavePayload(_ context.Context, taskID string, doc []byte) error {
	return s.write(taskID, payloadExt, doc)
}

// Payload implements schemas.ArtifactStore.
func (s *FileStore) Payload(_ context.Context, taskID string) ([]byte, error) {
	return s.read(taskID, payloadExt)
}

func (s *FileStore) write(taskID, ext string, doc []byte) error {
	path, err := s.path(taskID, ext)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	s.log.Debug("Artifact persisted",
		zap.String("task_id", taskID),
		zap.String("path", path),
		zap.Int("bytes", len(doc)))
	return nil
}

func (s *FileStore) read(taskID, ext string) ([]byte, error) {
	path, err := s.path(taskID, ext)
	if err != nil {
		return nil, err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact for task %s: %w", taskID, schemas.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return doc, nil
}

// path maps a task id to a file under the artifact directory. Task ids that
// would escape the directory are rejected rather than normalized.
func (s *FileStore) path(taskID, ext string) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("task id must not be empty")
	}
	if filepath.Base(taskID) != taskID {
		return "", fmt.Errorf("invalid task id %q", taskID)
	}
	return filepath.Join(s.dir, taskID+ext), nil
}
