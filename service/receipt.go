package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"

	"price-tracker/analytics"
	"price-tracker/blob"
	"price-tracker/llm"
	"price-tracker/metrics"
	"price-tracker/models"
	"price-tracker/ocr"
	"price-tracker/upload"
)

// ReceiptService runs an uploaded receipt image through
// decode, OCR, model extraction and confidence scoring.
type ReceiptService struct {
	ocr          ocr.Client
	extractor    *llm.Extractor
	blobs        blob.Store
	allowedTypes map[string]bool
	maxBytes     int64
}

// NewReceiptService creates the pipeline. blobs may be nil, in which case
// uploads are never stored.
func NewReceiptService(ocrClient ocr.Client, extractor *llm.Extractor, blobs blob.Store, allowedTypes []string, maxBytes int64) *ReceiptService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &ReceiptService{
		ocr:          ocrClient,
		extractor:    extractor,
		blobs:        blobs,
		allowedTypes: allowed,
		maxBytes:     maxBytes,
	}
}

// Analyze validates the upload and runs the pipeline. Validation failures
// are returned as *RequestError; anything else is an upstream failure.
func (s *ReceiptService) Analyze(ctx context.Context, userID string, body []byte, contentType string, base64Encoded bool) (*models.ReceiptAnalysis, error) {
	analysis, err := s.analyze(ctx, userID, body, contentType, base64Encoded)

	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		metrics.ReceiptRequestsTotal.WithLabelValues("rejected").Inc()
	default:
		metrics.ReceiptRequestsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}
	return analysis, err
}

// RejectOversized classifies a body that exceeded the raw read limit,
// keeping the order of the regular checks: content type, then media
// type of the first file part, then size.
func (s *ReceiptService) RejectOversized(prefix []byte, contentType string, base64Encoded bool) error {
	var err error
	switch {
	case contentType == "":
		err = badRequest("Missing Content-Type header")
	case !s.allowedTypes[upload.PeekMediaType(prefix, contentType, base64Encoded)]:
		err = &RequestError{Status: http.StatusUnsupportedMediaType, Message: "Unsupported image type"}
	default:
		err = &RequestError{Status: http.StatusRequestEntityTooLarge, Message: "File too large"}
	}
	metrics.ReceiptRequestsTotal.WithLabelValues("rejected").Inc()
	return err
}

func (s *ReceiptService) analyze(ctx context.Context, userID string, body []byte, contentType string, base64Encoded bool) (*models.ReceiptAnalysis, error) {
	if len(body) == 0 {
		return nil, badRequest("No body received")
	}
	if contentType == "" {
		return nil, badRequest("Missing Content-Type header")
	}

	start := time.Now()
	file, err := upload.Decode(body, contentType, base64Encoded)
	metrics.ObserveStage("decode", time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).Warn("failed to decode receipt upload")
		return nil, badRequest("Malformed multipart body")
	}

	if !s.allowedTypes[file.MimeType] {
		return nil, &RequestError{Status: http.StatusUnsupportedMediaType, Message: "Unsupported image type"}
	}
	if int64(len(file.Data)) > s.maxBytes {
		return nil, &RequestError{Status: http.StatusRequestEntityTooLarge, Message: "File too large"}
	}

	logger := log.WithFields(log.Fields{
		"user_id":   userID,
		"filename":  file.Filename,
		"mime_type": file.MimeType,
		"size":      len(file.Data),
	})

	var key string
	if s.blobs != nil {
		start = time.Now()
		key, err = s.blobs.PutReceipt(ctx, userID, file.MimeType, file.Data)
		metrics.ObserveStage("blob", time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		logger = logger.WithField("key", key)
	}

	result, err := s.extract(ctx, file.Data)
	if err != nil {
		logger.WithError(err).Error("receipt analysis failed")
		if key != "" {
			s.discard(ctx, key)
		}
		return nil, err
	}

	logger.WithField("products", len(result.Products)).Info("receipt analyzed")
	return &models.ReceiptAnalysis{
		Message:  "Image received",
		Filename: file.Filename,
		Size:     len(file.Data),
		MimeType: file.MimeType,
		Result:   analytics.AddConfidence(result),
	}, nil
}

func (s *ReceiptService) extract(ctx context.Context, image []byte) (*models.ExtractionResult, error) {
	start := time.Now()
	text, err := s.ocr.DetectText(ctx, image)
	metrics.ObserveStage("ocr", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}

	start = time.Now()
	result, err := s.extractor.Extract(ctx, text)
	metrics.ObserveStage("extract", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("receipt extraction failed: %w", err)
	}
	return result, nil
}

// discard removes a stored upload after a later stage failed. It runs
// even when the request context is already cancelled.
func (s *ReceiptService) discard(ctx context.Context, key string) {
	if err := s.blobs.DeleteReceipt(context.WithoutCancel(ctx), key); err != nil {
		log.WithError(err).WithField("key", key).Error("failed to delete stored receipt")
	}
}
