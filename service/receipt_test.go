package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-tracker/llm"
	"price-tracker/ocr"
	"price-tracker/stubllm"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// multipartBody builds a body with one file part of the given type.
func multipartBody(t *testing.T, filename, mimeType string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes(), w.FormDataContentType()
}

type failingOCR struct{ err error }

func (f failingOCR) DetectText(context.Context, []byte) (string, error) { return "", f.err }

type fakeBlobs struct {
	stored  []string
	deleted []string
}

func (f *fakeBlobs) PutReceipt(_ context.Context, userID, mimeType string, _ []byte) (string, error) {
	key := "receipts/" + userID + "/1.png"
	f.stored = append(f.stored, key)
	return key, nil
}

func (f *fakeBlobs) DeleteReceipt(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newStubReceiptService(maxBytes int64) *ReceiptService {
	return NewReceiptService(ocr.NewStubClient(), llm.NewExtractor(stubllm.NewClient()), nil, allowedImageTypes, maxBytes)
}

func TestAnalyzeRejects(t *testing.T) {
	pngBody, pngType := multipartBody(t, "r.png", "image/png", bytes.Repeat([]byte{1}, 64))
	pdfBody, pdfType := multipartBody(t, "r.pdf", "application/pdf", []byte("%PDF"))

	testCases := []struct {
		name        string
		body        []byte
		contentType string
		status      int
		message     string
	}{
		{"empty body", nil, pngType, http.StatusBadRequest, "No body received"},
		{"missing content type", pngBody, "", http.StatusBadRequest, "Missing Content-Type header"},
		{"malformed", []byte("garbage"), "multipart/form-data", http.StatusBadRequest, "Malformed multipart body"},
		{"pdf", pdfBody, pdfType, http.StatusUnsupportedMediaType, "Unsupported image type"},
		{"too large", pngBody, pngType, http.StatusRequestEntityTooLarge, "File too large"},
	}

	svc := newStubReceiptService(32)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Analyze(context.Background(), "u1", tc.body, tc.contentType, false)
			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr), "expected RequestError, got %v", err)
			assert.Equal(t, tc.status, reqErr.Status)
			assert.Equal(t, tc.message, reqErr.Message)
		})
	}
}

func TestAnalyzeWithStubs(t *testing.T) {
	body, contentType := multipartBody(t, "receipt.jpg", "image/jpeg", []byte("jpeg-bytes"))

	analysis, err := newStubReceiptService(5*1024*1024).Analyze(context.Background(), "u1", body, contentType, false)
	require.NoError(t, err)

	assert.Equal(t, "Image received", analysis.Message)
	assert.Equal(t, "receipt.jpg", analysis.Filename)
	assert.Equal(t, "image/jpeg", analysis.MimeType)
	assert.Equal(t, len("jpeg-bytes"), analysis.Size)
	require.Len(t, analysis.Result.Products, 2)
	assert.Equal(t, 2.49, analysis.Result.Products[0].Price)
	assert.Equal(t, 0.95, analysis.Result.Products[0].Confidence.Price)
}

func TestAnalyzeOCRFailureDeletesStoredReceipt(t *testing.T) {
	body, contentType := multipartBody(t, "receipt.png", "image/png", []byte("png"))
	blobs := &fakeBlobs{}
	boom := errors.New("textract unavailable")

	svc := NewReceiptService(failingOCR{err: boom}, llm.NewExtractor(stubllm.NewClient()), blobs, allowedImageTypes, 1024)
	_, err := svc.Analyze(context.Background(), "u1", body, contentType, false)

	assert.ErrorIs(t, err, boom)
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
	assert.Equal(t, []string{"receipts/u1/1.png"}, blobs.stored)
	assert.Equal(t, blobs.stored, blobs.deleted)
}
