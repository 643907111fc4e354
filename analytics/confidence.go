package analytics

import (
	"math"
	"unicode/utf8"

	"price-tracker/models"
)

// Heuristic scores. They are deterministic placeholders, not calibrated probabilities.
const (
	longNameConfidence  = 0.9
	shortNameConfidence = 0.6
	numericPriceScore   = 0.95
	otherPriceScore     = 0.4
	brandPresentScore   = 0.7
	brandMissingScore   = 0.3

	shortNameMaxLen = 5
)

// AddConfidence returns a copy of result whose products carry per-field
// confidence scores. Product order and count are preserved and result is not
// modified.
func AddConfidence(result *models.ExtractionResult) models.AnnotatedResult {
	annotated := models.AnnotatedResult{
		Store:        result.Store,
		Currency:     result.Currency,
		PurchaseDate: result.PurchaseDate,
		Products:     make([]models.AnnotatedProduct, 0, len(result.Products)),
	}

	for _, p := range result.Products {
		annotated.Products = append(annotated.Products, models.AnnotatedProduct{
			ExtractedProduct: p,
			Confidence:       scoreProduct(p),
		})
	}
	return annotated
}

func scoreProduct(p models.ExtractedProduct) models.Confidence {
	c := models.Confidence{
		Name:  shortNameConfidence,
		Price: otherPriceScore,
		Brand: brandMissingScore,
	}
	if utf8.RuneCountInString(p.Name) > shortNameMaxLen {
		c.Name = longNameConfidence
	}
	if !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0) {
		c.Price = numericPriceScore
	}
	if p.Brand != nil && *p.Brand != "" {
		c.Brand = brandPresentScore
	}
	return c
}
