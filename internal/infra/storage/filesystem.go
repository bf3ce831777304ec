package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// FileStore keeps artifacts as <id>.json and <id>.zip under one directory.
// Every file is written to a temp name and renamed into place, so readers
// never observe a half-written encoding.
type FileStore struct {
	dir string
	log *zap.Logger
}

// NewFileStore ensures dir exists.
func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("results directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{dir: dir, log: log.Named("filestore")}, nil
}

// Dir returns the results directory.
func (s *FileStore) Dir() string { return s.dir }

// Persist implements analysis.ArtifactStore.
func (s *FileStore) Persist(ctx context.Context, r *analysis.Result) error {
	if r == nil || r.ArtifactID == "" {
		return &analysis.PersistenceError{Encoding: analysis.FormatDocument, Err: errors.New("missing artifact id")}
	}
	doc, bundle, err := encodeBoth(r)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatDocument, Err: err}
	}

	docPath := s.path(r.ArtifactID, analysis.FormatDocument)
	if err := writeFileAtomic(s.dir, docPath, doc); err != nil {
		return &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatDocument, Err: err}
	}

	// bundle selalu setelah document
	if err := writeFileAtomic(s.dir, s.path(r.ArtifactID, analysis.FormatBundle), bundle); err != nil {
		if rmErr := os.Remove(docPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Warn("failed to remove orphaned document",
				zap.String("artifact_id", string(r.ArtifactID)), zap.Error(rmErr))
		}
		return &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatBundle, Err: err}
	}
	return nil
}

// Retrieve implements analysis.ArtifactStore.
func (s *FileStore) Retrieve(ctx context.Context, id analysis.ArtifactID, f analysis.Format) (*analysis.Download, error) {
	if f != analysis.FormatDocument && f != analysis.FormatBundle {
		return nil, analysis.ErrArtifactNotFound
	}
	file, err := os.Open(s.path(id, f))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, analysis.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, analysis.ErrArtifactNotFound
	}
	return &analysis.Download{
		Body:        file,
		Size:        info.Size(),
		ContentType: f.ContentType(),
		FileName:    id.FileName(f),
	}, nil
}

// Check verifies the directory is present and writable.
func (s *FileStore) Check(ctx context.Context) error {
	f, err := os.CreateTemp(s.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("results dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func (s *FileStore) path(id analysis.ArtifactID, f analysis.Format) string {
	return filepath.Join(s.dir, filepath.Base(id.FileName(f)))
}

func writeFileAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
