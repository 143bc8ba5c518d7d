package domain

import (
	"context"
	"io"
)

// VisionClient is the external image-understanding model.
// Describe sends one image with one instruction prompt and returns the raw answer text.
type VisionClient interface {
	Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// StagedImage is an upload that has been written to the staging area
type StagedImage struct {
	BaseName  string // generated unique stem shared by the artifact pair
	Extension string // including the dot, may be empty
	Path      string
}

// ArtifactStore owns the uploads (staging) and processed (permanent) directories.
type ArtifactStore interface {
	// Stage copies an upload into the staging area under a fresh unique name.
	Stage(ctx context.Context, originalName string, r io.Reader) (*StagedImage, error)
	// Discard removes a staged upload that will not be processed.
	Discard(staged *StagedImage) error
	// Commit relocates the staged image and writes the result document next
	// to it. It returns the document's file name, the retrieval handle.
	Commit(ctx context.Context, staged *StagedImage, result AnalysisResult) (string, error)
	// Rollback removes a committed artifact pair that could not be recorded.
	Rollback(staged *StagedImage) error
	// Resolve maps a handle or image name to its path in the processed directory.
	Resolve(name string) (string, error)
}

// EntryLog is the append-only list of every result produced so far.
type EntryLog interface {
	Append(ctx context.Context, result AnalysisResult) error
	List(ctx context.Context) ([]AnalysisResult, error)
	Get(ctx context.Context, index int) (*AnalysisResult, error)
}
