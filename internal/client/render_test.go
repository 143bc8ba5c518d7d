package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlens/backend/internal/domain"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		result domain.AnalysisResult
		want   Display
	}{
		{
			name: "complete result",
			result: domain.AnalysisResult{
				ItemName:                "Apple",
				Calories:                "95",
				Score:                   "4",
				Description:             "A fruit.",
				Sugar:                   "19",
				Protein:                 "0",
				Fat:                     "0",
				SustainableAlternatives: []string{"local apple", "pear"},
			},
			want: Display{
				ItemName:     "Apple",
				Score:        "4/5",
				Calories:     "95 calories",
				Description:  "A fruit.",
				Sugar:        "19 grams",
				Protein:      "0 grams",
				Fat:          "0 grams",
				Alternatives: "local apple, pear",
			},
		},
		{
			name:   "zero value never renders blank",
			result: domain.AnalysisResult{},
			want: Display{
				ItemName:     "N/A",
				Score:        "?/5",
				Calories:     "N/A calories",
				Description:  "No description available.",
				Sugar:        "N/A grams",
				Protein:      "N/A grams",
				Fat:          "N/A grams",
				Alternatives: "No alternatives available.",
			},
		},
		{
			name:   "normalized defaults",
			result: domain.Normalize(domain.RawAnalysis{}),
			want: Display{
				ItemName:     "Unknown",
				Score:        "?/5",
				Calories:     "N/A calories",
				Description:  "No description available.",
				Sugar:        "N/A grams",
				Protein:      "N/A grams",
				Fat:          "N/A grams",
				Alternatives: "No alternatives available.",
			},
		},
		{
			name: "blank alternatives are dropped",
			result: domain.AnalysisResult{
				ItemName:                "Rice",
				SustainableAlternatives: []string{" ", "millet", ""},
			},
			want: Display{
				ItemName:     "Rice",
				Score:        "?/5",
				Calories:     "N/A calories",
				Description:  "No description available.",
				Sugar:        "N/A grams",
				Protein:      "N/A grams",
				Fat:          "N/A grams",
				Alternatives: "millet",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.result))
		})
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()

	assert.Equal(t, "SAMPLE TEXT", p.ItemName)
	assert.Equal(t, "?/5", p.Score)
	assert.Equal(t, "No alternatives available.", p.Alternatives)
	for _, v := range []string{p.ItemName, p.Score, p.Calories, p.Description, p.Sugar, p.Protein, p.Fat, p.Alternatives} {
		assert.NotEmpty(t, v)
	}
}

func TestDisplayWriteTo(t *testing.T) {
	var buf bytes.Buffer

	n, err := Render(domain.AnalysisResult{ItemName: "Apple", Score: "4"}).WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, "Item:           Apple", lines[0])
	assert.Equal(t, "Sustainability: 4/5", lines[1])
}
