package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/foodlens/backend/internal/domain"
)

// ResultSuffix is appended to the shared base name to form the result document name
const ResultSuffix = "-content.json"

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// FileStore keeps staged uploads and processed artifact pairs on the local filesystem
type FileStore struct {
	uploadsDir   string
	processedDir string
	newName      func() string
}

// NewFileStore creates the store, making both directories if they don't exist
func NewFileStore(uploadsDir, processedDir string) (*FileStore, error) {
	for _, dir := range []string{uploadsDir, processedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return &FileStore{
		uploadsDir:   uploadsDir,
		processedDir: processedDir,
		newName:      uuid.NewString,
	}, nil
}

// Stage writes the upload to the uploads directory under a fresh unique name
func (s *FileStore) Stage(ctx context.Context, originalName string, r io.Reader) (*domain.StagedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staged := &domain.StagedImage{
		BaseName:  s.newName(),
		Extension: cleanExtension(originalName),
	}
	staged.Path = filepath.Join(s.uploadsDir, staged.BaseName+staged.Extension)

	f, err := os.OpenFile(staged.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(staged.Path)
		return nil, fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(staged.Path)
		return nil, fmt.Errorf("failed to close staged file: %w", err)
	}

	return staged, nil
}

// Discard removes a staged upload. A file that is already gone is not an error.
func (s *FileStore) Discard(staged *domain.StagedImage) error {
	if staged == nil {
		return nil
	}
	if err := os.Remove(staged.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Commit moves the staged image into the processed directory and writes the
// result document beside it. A failure after the move leaves the image
// without its document.
func (s *FileStore) Commit(ctx context.Context, staged *domain.StagedImage, result domain.AnalysisResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	imagePath := filepath.Join(s.processedDir, staged.BaseName+staged.Extension)
	if err := moveFile(staged.Path, imagePath); err != nil {
		return "", fmt.Errorf("failed to move processed image: %w", err)
	}

	data, err := json.MarshalIndent(domain.ResultDocument{Content: result}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result document: %w", err)
	}

	handle := staged.BaseName + ResultSuffix
	if err := os.WriteFile(filepath.Join(s.processedDir, handle), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result document: %w", err)
	}

	return handle, nil
}

// Rollback deletes both files of a committed pair. Files that are already
// gone are not an error.
func (s *FileStore) Rollback(staged *domain.StagedImage) error {
	if staged == nil {
		return nil
	}

	var errs []error
	for _, name := range []string{staged.BaseName + staged.Extension, staged.BaseName + ResultSuffix} {
		if err := os.Remove(filepath.Join(s.processedDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolve returns the path of a file in the processed directory. Names that
// try to leave the directory are reported as not found.
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", domain.ErrArtifactNotFound
	}

	path := filepath.Join(s.processedDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrArtifactNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", domain.ErrArtifactNotFound
	}

	return path, nil
}

// cleanExtension keeps a short lowercase alphanumeric extension from the
// client-supplied file name and drops anything else.
func cleanExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// moveFile renames src to dst, copying across filesystems when needed
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}
