package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodlens/backend/internal/domain"
	"github.com/foodlens/backend/internal/logger"
	"github.com/foodlens/backend/internal/usecase"
)

const (
	serviceName = "foodlens-backend"
	version     = "1.0.0"

	// imageField is the multipart field holding the upload
	imageField = "image"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer       *usecase.AnalyzeService
	maxUploadBytes int64
	log            logrus.FieldLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(analyzer *usecase.AnalyzeService, maxUploadBytes int64, log logrus.FieldLogger) *Handler {
	return &Handler{
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
		log:            logger.Component(log, "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": version,
	})
}

// Analyze accepts one multipart image, runs the analysis and returns the
// name of the result document. The client fetches it from /processed.
func (h *Handler) Analyze(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
			return
		}
		h.writeError(c, domain.ErrNoImageProvided)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, domain.ErrNoImageProvided)
		return
	}
	defer file.Close()

	handle, err := h.analyzer.Analyze(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jsonFileName": handle})
}

// ListEntries returns every recorded result in insertion order
func (h *Handler) ListEntries(c *gin.Context) {
	entries, err := h.analyzer.Entries(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntry returns one recorded result by zero-based position
func (h *Handler) GetEntry(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.writeError(c, domain.ErrInvalidIndex)
		return
	}

	entry, err := h.analyzer.Entry(c.Request.Context(), index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ServeProcessed streams a relocated image or a result document
func (h *Handler) ServeProcessed(c *gin.Context) {
	path, err := h.analyzer.ResolveArtifact(c.Param("file"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.File(path)
}

// writeError maps a pipeline error to a status and a fixed message. Internal
// details are logged, never returned.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, message := errorResponse(err)

	entry := h.log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	c.JSON(status, gin.H{"error": message})
}

func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoImageProvided):
		return http.StatusBadRequest, "No image provided"
	case errors.Is(err, domain.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType, "Unsupported image type"
	case errors.Is(err, domain.ErrNotFood):
		return http.StatusUnprocessableEntity, "Not recognized as food"
	case errors.Is(err, domain.ErrUnparsableModelOutput):
		return http.StatusBadGateway, "Failed to parse JSON content"
	case errors.Is(err, domain.ErrExternalCallFailed):
		return http.StatusBadGateway, "Failed to analyze image"
	case errors.Is(err, domain.ErrPersistenceFailed):
		return http.StatusInternalServerError, "Failed to save analysis"
	case errors.Is(err, domain.ErrInvalidIndex):
		return http.StatusBadRequest, "Invalid entry index"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusNotFound, "Entry not found"
	case errors.Is(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound, "File not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
