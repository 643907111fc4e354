package llm

import (
	"context"
	"fmt"

	"price-tracker/models"
	"price-tracker/parser"
)

// Client abstracts the text-generation provider used by the receipt analyzer.
type Client interface {
	// Complete sends a single user prompt and returns the provider's raw
	// response payload, which wraps the model's answer in content[0].text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor turns OCR text into structured receipt data with one model call.
type Extractor struct {
	client Client
}

func NewExtractor(client Client) *Extractor {
	return &Extractor{client: client}
}

// Extract makes exactly one attempt; a malformed answer is not re-prompted.
func (e *Extractor) Extract(ctx context.Context, ocrText string) (*models.ExtractionResult, error) {
	raw, err := e.client.Complete(ctx, parser.BuildPrompt(ocrText))
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}
	return parser.ParseModelResponse(raw)
}
