package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Defaults substituted for fields the model left out
const (
	DefaultItemName    = "Unknown"
	DefaultDescription = "No description available."
	NotAvailable       = "N/A"
)

// AnalysisResult is the normalized answer for one analyzed image.
// Every field is always present in JSON output.
type AnalysisResult struct {
	ItemName                string   `json:"item_name"`
	Calories                string   `json:"calories"`
	Score                   string   `json:"score"` // sustainability rating 0-5
	Description             string   `json:"description"`
	Sugar                   string   `json:"sugar"`   // grams
	Protein                 string   `json:"protein"` // grams
	Fat                     string   `json:"fat"`     // grams
	SustainableAlternatives []string `json:"sustainable_alternatives"`
}

// ResultDocument is the on-disk shape of a result artifact: {"content": {...}}
type ResultDocument struct {
	Content AnalysisResult `json:"content"`
}

// RawAnalysis is the model's answer before normalization. Fields are kept
// raw so that missing keys, nulls, numbers and strings can all be told apart.
type RawAnalysis struct {
	ItemName                json.RawMessage `json:"item_name"`
	Calories                json.RawMessage `json:"calories"`
	Score                   json.RawMessage `json:"score"`
	Description             json.RawMessage `json:"description"`
	Sugar                   json.RawMessage `json:"sugar"`
	Protein                 json.RawMessage `json:"protein"`
	Fat                     json.RawMessage `json:"fat"`
	SustainableAlternatives json.RawMessage `json:"sustainable_alternatives"`
}

// Normalize turns a partial model answer into a fully populated result.
// It never fails: anything unusable becomes the field's default.
func Normalize(raw RawAnalysis) AnalysisResult {
	return AnalysisResult{
		ItemName:                textOr(raw.ItemName, DefaultItemName),
		Calories:                textOr(raw.Calories, NotAvailable),
		Score:                   textOr(raw.Score, NotAvailable),
		Description:             textOr(raw.Description, DefaultDescription),
		Sugar:                   textOr(raw.Sugar, NotAvailable),
		Protein:                 textOr(raw.Protein, NotAvailable),
		Fat:                     textOr(raw.Fat, NotAvailable),
		SustainableAlternatives: listOf(raw.SustainableAlternatives),
	}
}

// textOr renders a JSON scalar as text. Strings are trimmed, numbers keep
// their literal form. Missing, null, empty, boolean and structured values
// fall back to def.
func textOr(raw json.RawMessage, def string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return def
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return def
	}

	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return s
		}
	case json.Number:
		return val.String()
	}
	return def
}

// listOf accepts an array of scalars or a single string.
func listOf(raw json.RawMessage) []string {
	out := []string{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := textOr(raw, ""); s != "" {
			out = append(out, s)
		}
		return out
	}

	for _, item := range items {
		if s := textOr(item, ""); s != "" {
			out = append(out, s)
		}
	}
	return out
}
