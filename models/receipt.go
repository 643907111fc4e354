package models

// UploadedFile is the first file attachment found in a multipart body
type UploadedFile struct {
	Filename string
	MimeType string
	Data     []byte
}

// ExtractionResult is the structured data the model extracted from a receipt
type ExtractionResult struct {
	Store        *string            `json:"store"`
	Currency     *Currency          `json:"currency"`
	PurchaseDate *string            `json:"purchaseDate"`
	Products     []ExtractedProduct `json:"products"`
}

// ExtractedProduct is a single purchased line item
type ExtractedProduct struct {
	Name  string  `json:"name"`
	Brand *string `json:"brand"`
	Price float64 `json:"price"`
}

// Confidence holds heuristic per-field scores in [0,1]. They are
// placeholders, not calibrated probabilities.
type Confidence struct {
	Name  float64 `json:"name"`
	Price float64 `json:"price"`
	Brand float64 `json:"brand"`
}

// AnnotatedProduct is an ExtractedProduct with confidence scores
type AnnotatedProduct struct {
	ExtractedProduct
	Confidence Confidence `json:"confidence"`
}

// AnnotatedResult is an ExtractionResult whose products carry confidence
type AnnotatedResult struct {
	Store        *string            `json:"store"`
	Currency     *Currency          `json:"currency"`
	PurchaseDate *string            `json:"purchaseDate"`
	Products     []AnnotatedProduct `json:"products"`
}

// ReceiptAnalysis is the payload returned by the receipt endpoint
type ReceiptAnalysis struct {
	Message  string          `json:"message"`
	Filename string          `json:"filename,omitempty"`
	Size     int             `json:"size"`
	MimeType string          `json:"mimeType,omitempty"`
	Result   AnnotatedResult `json:"result"`
}
