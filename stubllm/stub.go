package stubllm

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// Client is a deterministic, no-network model stub intended for CI and local
// end-to-end runs. It reads "<name> <price>" lines out of the OCR block of the
// prompt and answers with a schema-valid payload so the whole pipeline runs.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) Complete(_ context.Context, prompt string) (string, error) {
	lines := strings.Split(ocrBlock(prompt), "\n")

	var store any
	products := []map[string]any{}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		price, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil || len(fields) < 2 {
			if i == 0 {
				store = line
			}
			continue
		}
		name := strings.Join(fields[:len(fields)-1], " ")
		if strings.EqualFold(fields[0], "total") || strings.EqualFold(fields[0], "vat") {
			continue
		}
		products = append(products, map[string]any{"name": name, "brand": nil, "price": price})
	}

	answer, err := json.Marshal(map[string]any{
		"store":        store,
		"currency":     nil,
		"purchaseDate": nil,
		"products":     products,
	})
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": string(answer)}},
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// ocrBlock returns the text between the triple quotes of the prompt.
func ocrBlock(prompt string) string {
	start := strings.Index(prompt, `"""`)
	end := strings.LastIndex(prompt, `"""`)
	if start == -1 || end <= start {
		return prompt
	}
	return strings.Trim(prompt[start+3:end], "\n")
}
