package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/foodlens/backend/internal/domain"
)

// Display is one result formatted for a reader. No field is ever empty.
type Display struct {
	ItemName     string
	Score        string
	Calories     string
	Description  string
	Sugar        string
	Protein      string
	Fat          string
	Alternatives string
}

// Placeholder is what an empty result view shows
func Placeholder() Display {
	return Display{
		ItemName:     "SAMPLE TEXT",
		Score:        "?/5",
		Calories:     "SAMPLE TEXT",
		Description:  domain.DefaultDescription,
		Sugar:        "No sugar content available.",
		Protein:      "No protein content available.",
		Fat:          "No fat content available.",
		Alternatives: "No alternatives available.",
	}
}

// Render formats a result, substituting placeholders for blank fields
func Render(result domain.AnalysisResult) Display {
	score := textOr(result.Score, domain.NotAvailable)
	if score == domain.NotAvailable {
		score = "?"
	}

	alternatives := make([]string, 0, len(result.SustainableAlternatives))
	for _, a := range result.SustainableAlternatives {
		if a = strings.TrimSpace(a); a != "" {
			alternatives = append(alternatives, a)
		}
	}
	joined := strings.Join(alternatives, ", ")
	if joined == "" {
		joined = Placeholder().Alternatives
	}

	return Display{
		ItemName:     textOr(result.ItemName, domain.NotAvailable),
		Score:        score + "/5",
		Calories:     textOr(result.Calories, domain.NotAvailable) + " calories",
		Description:  textOr(result.Description, domain.DefaultDescription),
		Sugar:        textOr(result.Sugar, domain.NotAvailable) + " grams",
		Protein:      textOr(result.Protein, domain.NotAvailable) + " grams",
		Fat:          textOr(result.Fat, domain.NotAvailable) + " grams",
		Alternatives: joined,
	}
}

// WriteTo prints the display as aligned label/value lines
func (d Display) WriteTo(w io.Writer) (int64, error) {
	rows := []struct{ label, value string }{
		{"Item", d.ItemName},
		{"Sustainability", d.Score},
		{"Calories", d.Calories},
		{"Description", d.Description},
		{"Sugar", d.Sugar},
		{"Protein", d.Protein},
		{"Fat", d.Fat},
		{"Alternatives", d.Alternatives},
	}

	var total int64
	for _, row := range rows {
		n, err := fmt.Fprintf(w, "%-15s %s\n", row.label+":", row.value)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func textOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
