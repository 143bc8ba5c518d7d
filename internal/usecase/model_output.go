package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/foodlens/backend/internal/domain"
)

// fencePattern matches an answer wrapped in a markdown code fence, e.g. ```json ... ```
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?(.*?)\\r?\\n?[ \\t]*```$")

// notFoodMarker is what the model says when the subject is not food
const notFoodMarker = "not food"

// stripCodeFence removes a surrounding code fence. Text without one is
// returned trimmed.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// isNotFood reports whether the model flagged the subject as not food.
func isNotFood(text string) bool {
	return strings.Contains(strings.ToLower(text), notFoodMarker)
}

// parseModelOutput decodes the answer into a RawAnalysis. The requested
// envelope is {"content": {...}}; a bare object is taken as the content.
func parseModelOutput(text string) (domain.RawAnalysis, error) {
	var raw domain.RawAnalysis

	cleaned := stripCodeFence(text)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return raw, fmt.Errorf("%w: %v", domain.ErrUnparsableModelOutput, err)
	}
	if envelope == nil {
		return raw, fmt.Errorf("%w: answer is null", domain.ErrUnparsableModelOutput)
	}

	body := []byte(cleaned)
	if content, ok := envelope["content"]; ok {
		body = bytes.TrimSpace(content)
		if len(body) == 0 || body[0] != '{' {
			return raw, fmt.Errorf("%w: content is not an object", domain.ErrUnparsableModelOutput)
		}
	}

	if err := json.Unmarshal(body, &raw); err != nil {
		return raw, fmt.Errorf("%w: %v", domain.ErrUnparsableModelOutput, err)
	}

	return raw, nil
}
