package parser

import "fmt"

const promptTemplate = `
You are a system that extracts structured data from OCR text.

The input text comes from a supermarket receipt.
The text may contain:
- totals
- VAT
- card payment info
- legal text
- random characters
- Bulgarian or English language

Your task:
Extract ONLY purchased products.

Rules:
- Ignore totals, subtotals, VAT, discounts
- Ignore receipt metadata
- Do NOT guess missing values
- Do NOT invent products
- Prices must be numeric
- Currency must be inferred only if explicitly present

Return STRICT JSON ONLY.
Do not include explanations.
Do not include markdown.
Do not include comments.

Schema:
{
  "store": string | null,
  "currency": "EUR" | "USD" | "BGN" | "GBP" | null,
  "purchaseDate": string | null,
  "products": [
    {
      "name": string,
      "brand": string | null,
      "price": number
    }
  ]
}

OCR TEXT:
"""
%s
"""
`

// BuildPrompt embeds the OCR text into the fixed extraction instructions.
// The output depends only on ocrText.
func BuildPrompt(ocrText string) string {
	return fmt.Sprintf(promptTemplate, ocrText)
}
