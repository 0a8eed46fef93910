package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/pkg/metrics"
)

const (
	dirPermission  = 0o755
	filePermission = 0o644
	storeFile      = "file"
)

// Layout locates every document written by a FileStore.
type Layout struct {
	LegislatorsPath string
	BillsPath       string
	ManifestPath    string
	VotesDir        string
}

// FileStore writes each document as a JSON file. A write interrupted midway
// leaves that file incomplete.
type FileStore struct {
	layout Layout
}

// NewFileStore creates the directories of layout and returns the store.
func NewFileStore(_ context.Context, layout Layout) (*FileStore, error) {
	dirs := []string{
		filepath.Dir(layout.LegislatorsPath),
		filepath.Dir(layout.BillsPath),
		filepath.Dir(layout.ManifestPath),
		layout.VotesDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return nil, fmt.Errorf("%w: create dir %q: %w", ErrWrite, dir, err)
		}
	}
	return &FileStore{layout: layout}, nil
}

// VotesPath returns the file holding an author's vote history.
func (s *FileStore) VotesPath(author string) (string, error) {
	if author == "" || author == "." || author == ".." ||
		strings.ContainsAny(author, `/\`) || strings.ContainsRune(author, 0) {
		return "", fmt.Errorf("%w: author %q", ErrInvalidKey, author)
	}
	return filepath.Join(s.layout.VotesDir, author+".json"), nil
}

func (s *FileStore) PutLegislators(_ context.Context, roster *model.Roster) error {
	return s.write(KindLegislators, s.layout.LegislatorsPath, roster)
}

func (s *FileStore) PutBills(_ context.Context, bills *model.Bills) error {
	return s.write(KindBills, s.layout.BillsPath, bills)
}

func (s *FileStore) PutVotes(_ context.Context, author string, history *model.History) error {
	path, err := s.VotesPath(author)
	if err != nil {
		return err
	}
	return s.write(KindVotes, path, history)
}

func (s *FileStore) PutManifest(_ context.Context, manifest model.Manifest) error {
	return s.write(KindManifest, s.layout.ManifestPath, manifest)
}

// Close is a no-op; every write closes its own file.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) write(kind, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.RecordWriteError(storeFile, kind)
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, kind, err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		metrics.RecordWriteError(storeFile, kind)
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	metrics.RecordDocumentWritten(storeFile, kind)
	return nil
}
