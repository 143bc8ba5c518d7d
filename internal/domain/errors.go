package domain

import "errors"

var (
	// ErrNoImageProvided is returned when the upload carries no image part
	ErrNoImageProvided = errors.New("no image provided")

	// ErrUnsupportedImage is returned when the uploaded bytes are not a raster image
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrExternalCallFailed is returned when the vision model call fails or returns no answer
	ErrExternalCallFailed = errors.New("vision model request failed")

	// ErrUnparsableModelOutput is returned when the model answer is not a JSON object after fence stripping
	ErrUnparsableModelOutput = errors.New("model output is not valid JSON")

	// ErrNotFood is returned when the model says the subject is not food
	ErrNotFood = errors.New("not recognized as food")

	// ErrPersistenceFailed is returned when relocating the image or writing an artifact fails
	ErrPersistenceFailed = errors.New("failed to persist analysis")

	// ErrInvalidIndex is returned when an entry index is not an integer
	ErrInvalidIndex = errors.New("invalid entry index")

	// ErrIndexOutOfRange is returned when an entry index is outside the log
	ErrIndexOutOfRange = errors.New("entry index out of range")

	// ErrArtifactNotFound is returned when a processed file does not exist
	ErrArtifactNotFound = errors.New("artifact not found")
)
