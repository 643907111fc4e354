package models

// Currency is an ISO 4217 code supported by the tracker.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyBGN Currency = "BGN"
	CurrencyGBP Currency = "GBP"
)

// CurrencySymbols maps supported currencies to their display symbols
var CurrencySymbols = map[Currency]string{
	CurrencyEUR: "€",
	CurrencyUSD: "$",
	CurrencyBGN: "лв",
	CurrencyGBP: "£",
}

// Valid reports whether c is one of the supported currencies
func (c Currency) Valid() bool {
	_, ok := CurrencySymbols[c]
	return ok
}

// Trend classifies the direction of the last price change
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// UnknownStore is recorded on history entries when no store is known
const UnknownStore = "Unknown"

// Location is a geographic point where a price was observed
type Location struct {
	Lat float64 `json:"lat" dynamodbav:"lat"`
	Lng float64 `json:"lng" dynamodbav:"lng"`
}

// PriceEntry is a single observation in a product's price history
type PriceEntry struct {
	ID       string    `json:"id" dynamodbav:"id"`
	Date     string    `json:"date" dynamodbav:"date"`
	Store    string    `json:"store,omitempty" dynamodbav:"store,omitempty"`
	Location *Location `json:"location,omitempty" dynamodbav:"location,omitempty"`
	Price    float64   `json:"price" dynamodbav:"price" binding:"gte=0"`
	Currency Currency  `json:"currency" dynamodbav:"currency" binding:"omitempty,oneof=EUR USD BGN GBP"`
}

// TendencyMetrics are the analytics derived from a price history
type TendencyMetrics struct {
	AveragePrice float64 `json:"averagePrice"`
	LowestPrice  float64 `json:"lowestPrice"`
	HighestPrice float64 `json:"highestPrice"`
	Trend        Trend   `json:"trend"`
}

// Product is a tracked product owned by a single user
type Product struct {
	ID          string `json:"id" dynamodbav:"id"`
	UserID      string `json:"userId" dynamodbav:"userId"`
	Name        string `json:"name" dynamodbav:"name"`
	Brand       string `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
	Category    string `json:"category,omitempty" dynamodbav:"category,omitempty"`
	Description string `json:"description,omitempty" dynamodbav:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" dynamodbav:"imageUrl,omitempty"`
	Store       string `json:"store,omitempty" dynamodbav:"store,omitempty"`

	// Price tracking
	LatestPrice    float64      `json:"latestPrice" dynamodbav:"latestPrice"`
	LatestCurrency Currency     `json:"latestCurrency" dynamodbav:"latestCurrency"`
	PriceHistory   []PriceEntry `json:"priceHistory" dynamodbav:"priceHistory"`

	// Analytics, only ever written by ApplyTendency
	AveragePrice float64 `json:"averagePrice" dynamodbav:"averagePrice"`
	LowestPrice  float64 `json:"lowestPrice" dynamodbav:"lowestPrice"`
	HighestPrice float64 `json:"highestPrice" dynamodbav:"highestPrice"`
	Trend        Trend   `json:"trend" dynamodbav:"trend"`

	Tags       []string `json:"tags,omitempty" dynamodbav:"tags,omitempty"`
	CreatedAt  string   `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt  string   `json:"updatedAt" dynamodbav:"updatedAt"`
	OCRRawText string   `json:"ocrRawText,omitempty" dynamodbav:"ocrRawText,omitempty"`
}

// ApplyTendency overwrites the analytics fields with m
func (p *Product) ApplyTendency(m TendencyMetrics) {
	p.AveragePrice = m.AveragePrice
	p.LowestPrice = m.LowestPrice
	p.HighestPrice = m.HighestPrice
	p.Trend = m.Trend
}

// CreateProductRequest is the body accepted when creating a product
type CreateProductRequest struct {
	ID             *string      `json:"id"`
	Name           string       `json:"name" binding:"required"`
	Brand          string       `json:"brand"`
	Category       string       `json:"category"`
	Description    string       `json:"description"`
	ImageURL       string       `json:"imageUrl"`
	Store          string       `json:"store"`
	LatestPrice    float64      `json:"latestPrice" binding:"gte=0"`
	LatestCurrency Currency     `json:"latestCurrency" binding:"omitempty,oneof=EUR USD BGN GBP"`
	PriceHistory   []PriceEntry `json:"priceHistory" binding:"omitempty,dive"`
	Tags           []string     `json:"tags"`
	CreatedAt      *string      `json:"createdAt"`
	OCRRawText     string       `json:"ocrRawText"`
}

// UpdateProductRequest carries the fields a client may change. Nil means
// "keep the stored value".
type UpdateProductRequest struct {
	Name           *string   `json:"name"`
	Brand          *string   `json:"brand"`
	Category       *string   `json:"category"`
	Description    *string   `json:"description"`
	ImageURL       *string   `json:"imageUrl"`
	Store          *string   `json:"store"`
	LatestPrice    *float64  `json:"latestPrice" binding:"omitempty,gte=0"`
	LatestCurrency *Currency `json:"latestCurrency" binding:"omitempty,oneof=EUR USD BGN GBP"`
	Location       *Location `json:"location"`
	Tags           []string  `json:"tags"`
	OCRRawText     *string   `json:"ocrRawText"`
}
