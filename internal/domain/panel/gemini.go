package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shelflab/platform/internal/conjoint"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiChooser asks a Gemini model to shop the shelf in character.
type GeminiChooser struct {
	client *genai.Client
	model  string
}

// NewGeminiChooser creates a chooser backed by the Gemini API.
func NewGeminiChooser(ctx context.Context, apiKey, model string) (*GeminiChooser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiChooser{client: client, model: model}, nil
}

// Model reports the configured model name for run records.
func (c *GeminiChooser) Model() string {
	return c.model
}

type geminiAnswer struct {
	Choice int `json:"choice"`
}

// Choose presents the shelf to the model and parses its JSON reply. A reply
// that is not valid JSON, or names a position off the shelf, is a skip.
func (c *GeminiChooser) Choose(ctx context.Context, persona Persona, items []ShelfItem) (int, error) {
	prompt := buildShelfPrompt(persona, items)

	temperature := float32(0.7)
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return 0, fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	var answer geminiAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return 0, fmt.Errorf("unparseable reply %q: %w", truncate(text, 120), ErrSkip)
	}
	if answer.Choice < conjoint.NoneChoice || answer.Choice >= len(items) {
		return 0, fmt.Errorf("choice %d off the shelf: %w", answer.Choice, ErrSkip)
	}
	return answer.Choice, nil
}

func buildShelfPrompt(persona Persona, items []ShelfItem) string {
	var b strings.Builder
	b.WriteString("You are a grocery shopper standing in front of a shelf.\n")
	b.WriteString("Shopper profile: ")
	b.WriteString(strings.TrimSpace(persona.Description))
	b.WriteString("\n\nThe shelf offers:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s", i, item.Name)
		if item.Brand != "" {
			fmt.Fprintf(&b, " by %s", item.Brand)
		}
		if item.Description != "" {
			fmt.Fprintf(&b, " (%s)", item.Description)
		}
		fmt.Fprintf(&b, " at $%d.%02d\n", item.Price/100, item.Price%100)
	}
	b.WriteString("\nPick the one product you would buy today, or decide to buy nothing.\n")
	b.WriteString(`Reply with JSON only: {"choice": <product number, or -1 for nothing>}`)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
