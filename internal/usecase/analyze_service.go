package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/foodlens/backend/internal/domain"
	"github.com/foodlens/backend/internal/logger"
)

// AnalyzeService turns one uploaded image into one recorded AnalysisResult.
type AnalyzeService struct {
	vision  domain.VisionClient
	store   domain.ArtifactStore
	entries domain.EntryLog
	prompt  string
	log     logrus.FieldLogger
}

// NewAnalyzeService creates a new analyze service with dependencies
func NewAnalyzeService(
	vision domain.VisionClient,
	store domain.ArtifactStore,
	entries domain.EntryLog,
	log logrus.FieldLogger,
) *AnalyzeService {
	return &AnalyzeService{
		vision:  vision,
		store:   store,
		entries: entries,
		prompt:  AnalysisPrompt,
		log:     logger.Component(log, "analyze"),
	}
}

// Analyze runs the pipeline for one upload and returns the handle (file
// name) of the written result document.
// Flow: validate -> stage -> describe -> not-food check -> parse -> normalize -> commit -> append
func (s *AnalyzeService) Analyze(ctx context.Context, filename string, body io.Reader) (string, error) {
	if body == nil {
		return "", domain.ErrNoImageProvided
	}

	image, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoImageProvided, err)
	}
	if len(image) == 0 {
		return "", domain.ErrNoImageProvided
	}

	mimeType := mimetype.Detect(image).String()
	if !strings.HasPrefix(mimeType, "image/") {
		s.log.WithField("mime", mimeType).Warn("rejected non-image upload")
		return "", domain.ErrUnsupportedImage
	}

	staged, err := s.store.Stage(ctx, filename, bytes.NewReader(image))
	if err != nil {
		s.log.WithError(err).Error("staging upload failed")
		return "", fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	log := s.log.WithField("upload", staged.BaseName+staged.Extension)

	// Once the model call starts the request runs to completion, even if
	// the client has gone away.
	workCtx := context.WithoutCancel(ctx)

	result, err := s.describe(workCtx, image, mimeType)
	if err != nil {
		log.WithError(err).Warn("analysis failed")
		s.discard(staged)
		return "", err
	}

	handle, err := s.store.Commit(workCtx, staged, result)
	if err != nil {
		log.WithError(err).Error("writing artifacts failed")
		s.discard(staged)
		return "", fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	if err := s.entries.Append(workCtx, result); err != nil {
		log.WithError(err).WithField("handle", handle).Error("appending to entry log failed")
		if rbErr := s.store.Rollback(staged); rbErr != nil {
			log.WithError(rbErr).WithField("handle", handle).Error("result document orphaned in processed directory")
		}
		return "", fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	log.WithFields(logrus.Fields{
		"handle": handle,
		"item":   result.ItemName,
	}).Info("analysis saved")

	return handle, nil
}

// describe queries the model and turns its answer into a normalized result.
func (s *AnalyzeService) describe(ctx context.Context, image []byte, mimeType string) (domain.AnalysisResult, error) {
	answer, err := s.vision.Describe(ctx, image, mimeType, s.prompt)
	if err != nil {
		if errors.Is(err, domain.ErrExternalCallFailed) {
			return domain.AnalysisResult{}, err
		}
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrExternalCallFailed, err)
	}
	s.log.WithField("answer", answer).Debug("model answered")

	if isNotFood(answer) {
		return domain.AnalysisResult{}, domain.ErrNotFood
	}

	raw, err := parseModelOutput(answer)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	return domain.Normalize(raw), nil
}

func (s *AnalyzeService) discard(staged *domain.StagedImage) {
	if err := s.store.Discard(staged); err != nil {
		s.log.WithError(err).WithField("path", staged.Path).Warn("could not remove staged upload")
	}
}

// Entries returns the full entry log in insertion order
func (s *AnalyzeService) Entries(ctx context.Context) ([]domain.AnalysisResult, error) {
	return s.entries.List(ctx)
}

// Entry returns the entry at a zero-based position
func (s *AnalyzeService) Entry(ctx context.Context, index int) (*domain.AnalysisResult, error) {
	return s.entries.Get(ctx, index)
}

// ResolveArtifact maps a processed file name to its path on disk
func (s *AnalyzeService) ResolveArtifact(name string) (string, error) {
	return s.store.Resolve(name)
}
