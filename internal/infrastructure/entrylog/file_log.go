package entrylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/foodlens/backend/internal/domain"
)

// FileLog is the append-only entry log stored as one JSON array document.
// Appends are serialized by a mutex so concurrent requests cannot drop each
// other's entries. Reads share the lock.
type FileLog struct {
	path  string
	mutex sync.RWMutex
}

// NewFileLog opens the log at path, creating an empty array document if the
// file doesn't exist. An existing file must hold a JSON array.
func NewFileLog(path string) (*FileLog, error) {
	l := &FileLog{path: path}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create entry log directory: %w", err)
		}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := l.write([]json.RawMessage{}); err != nil {
			return nil, err
		}
		return l, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat entry log: %w", err)
	}

	if _, err := l.read(); err != nil {
		return nil, err
	}
	return l, nil
}

// Append adds one result at the end of the log
func (l *FileLog) Append(ctx context.Context, result domain.AnalysisResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	entries, err := l.read()
	if err != nil {
		return err
	}

	return l.write(append(entries, encoded))
}

// List returns every entry in insertion order. Entries are normalized on the
// way out so older documents with missing fields still come back complete.
func (l *FileLog) List(ctx context.Context) ([]domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mutex.RLock()
	entries, err := l.read()
	l.mutex.RUnlock()
	if err != nil {
		return nil, err
	}

	results := make([]domain.AnalysisResult, 0, len(entries))
	for i, entry := range entries {
		result, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Get returns the entry at a zero-based position
func (l *FileLog) Get(ctx context.Context, index int) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mutex.RLock()
	entries, err := l.read()
	l.mutex.RUnlock()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("%w: %d (log has %d entries)", domain.ErrIndexOutOfRange, index, len(entries))
	}

	result, err := decodeEntry(entries[index])
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", index, err)
	}
	return &result, nil
}

// read loads the whole document. Callers hold the lock.
func (l *FileLog) read() ([]json.RawMessage, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry log: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("entry log %s is not a JSON array: %w", l.path, err)
	}
	if entries == nil {
		entries = []json.RawMessage{}
	}
	return entries, nil
}

// write replaces the whole document via a temp file and rename, so readers
// never see a half-written array. Callers hold the lock.
func (l *FileLog) write(entries []json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entry log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp entry log: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write entry log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write entry log: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace entry log: %w", err)
	}
	return nil
}

func decodeEntry(entry json.RawMessage) (domain.AnalysisResult, error) {
	var raw domain.RawAnalysis
	if err := json.Unmarshal(entry, &raw); err != nil {
		return domain.AnalysisResult{}, err
	}
	return domain.Normalize(raw), nil
}
