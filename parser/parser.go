package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"price-tracker/models"
)

var (
	ErrInvalidEnvelope  = errors.New("model returned invalid JSON")
	ErrNoTextOutput     = errors.New("model did not return text output")
	ErrNoJSONDetected   = errors.New("no JSON detected")
	ErrInvalidModelJSON = errors.New("model output was not valid JSON")
	ErrSchemaViolation  = errors.New("model output does not match the extraction schema")
)

// envelope is the Anthropic messages response shape returned by Bedrock
type envelope struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ParseModelResponse turns the raw inference payload into a validated ExtractionResult.
func ParseModelResponse(raw string) (*models.ExtractionResult, error) {
	text, err := UnwrapText(raw)
	if err != nil {
		return nil, err
	}

	data, err := ExtractJSON(text)
	if err != nil {
		if errors.Is(err, ErrInvalidModelJSON) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidModelJSON, err)
	}

	return ValidateExtraction(data)
}

// UnwrapText returns the text of the first content block of the payload.
func UnwrapText(raw string) (string, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if len(env.Content) == 0 || env.Content[0].Text == "" {
		return "", ErrNoTextOutput
	}
	return env.Content[0].Text, nil
}

// ExtractJSON returns the text between the first '{' and the last '}',
// tolerating commentary the model adds around the object.
func ExtractJSON(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONDetected
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, ErrInvalidModelJSON
	}
	return json.RawMessage(candidate), nil
}

// ValidateExtraction checks field types instead of trusting the prompt
// and builds the typed result.
func ValidateExtraction(data json.RawMessage) (*models.ExtractionResult, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelJSON, err)
	}

	result := &models.ExtractionResult{Products: []models.ExtractedProduct{}}

	var err error
	if result.Store, err = optionalString(obj, "store"); err != nil {
		return nil, err
	}
	if result.PurchaseDate, err = optionalString(obj, "purchaseDate"); err != nil {
		return nil, err
	}

	currency, err := optionalString(obj, "currency")
	if err != nil {
		return nil, err
	}
	if currency != nil {
		c := models.Currency(strings.ToUpper(*currency))
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unsupported currency %q", ErrSchemaViolation, *currency)
		}
		result.Currency = &c
	}

	items, ok := obj["products"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: products must be an array", ErrSchemaViolation)
	}

	for i, item := range items {
		p, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: product %d is not an object", ErrSchemaViolation, i)
		}

		name, ok := p["name"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: product %d: name must be a string", ErrSchemaViolation, i)
		}
		brand, err := optionalString(p, "brand")
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		price, ok := p["price"].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: product %d: price must be a number", ErrSchemaViolation, i)
		}

		result.Products = append(result.Products, models.ExtractedProduct{
			Name:  name,
			Brand: brand,
			Price: price,
		})
	}

	return result, nil
}

// optionalString reads a string-or-null field. Absent is the same as null.
func optionalString(obj map[string]any, key string) (*string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string or null", ErrSchemaViolation, key)
	}
	return &s, nil
}
