// Package analytics derives values from extracted receipts and price histories
// without touching any collaborator.
package analytics

import (
	"github.com/shopspring/decimal"

	"price-tracker/models"
)

// ComputeTendency recomputes the analytics of a chronological price history
// from scratch. An empty history yields zeros and a stable trend.
func ComputeTendency(history []models.PriceEntry) models.TendencyMetrics {
	if len(history) == 0 {
		return models.TendencyMetrics{Trend: models.TrendStable}
	}

	sum := decimal.Zero
	lowest := history[0].Price
	highest := history[0].Price
	for _, entry := range history {
		sum = sum.Add(decimal.NewFromFloat(entry.Price))
		if entry.Price < lowest {
			lowest = entry.Price
		}
		if entry.Price > highest {
			highest = entry.Price
		}
	}
	average := sum.Div(decimal.NewFromInt(int64(len(history))))

	trend := models.TrendStable
	if n := len(history); n > 1 {
		last, prev := history[n-1].Price, history[n-2].Price
		switch {
		case last > prev:
			trend = models.TrendUp
		case last < prev:
			trend = models.TrendDown
		}
	}

	return models.TendencyMetrics{
		AveragePrice: average.InexactFloat64(),
		LowestPrice:  lowest,
		HighestPrice: highest,
		Trend:        trend,
	}
}
