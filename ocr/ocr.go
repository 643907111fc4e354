package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// Client turns an image into the text lines it contains.
type Client interface {
	// DetectText returns the recognized lines joined by "\n", in document order.
	DetectText(ctx context.Context, image []byte) (string, error)
}

// TextractAPI is the part of the Textract client used here.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// TextractClient runs synchronous document text detection.
type TextractClient struct {
	api TextractAPI
}

func NewTextractClient(api TextractAPI) *TextractClient {
	return &TextractClient{api: api}
}

func (c *TextractClient) DetectText(ctx context.Context, image []byte) (string, error) {
	out, err := c.api.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		return "", fmt.Errorf("textract detect document text: %w", err)
	}
	return JoinLines(out.Blocks), nil
}

// JoinLines keeps LINE blocks in the order Textract returned them.
func JoinLines(blocks []types.Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockType != types.BlockTypeLine || b.Text == nil {
			continue
		}
		lines = append(lines, *b.Text)
	}
	return strings.Join(lines, "\n")
}

// StubClient is a deterministic, no-network OCR stand-in for local runs and CI.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) DetectText(_ context.Context, image []byte) (string, error) {
	sum := sha256.Sum256(image)
	return strings.Join([]string{
		"STUB MARKET #" + hex.EncodeToString(sum[:4]),
		"Milk 1L 2.49",
		"Bread 1.20",
		"TOTAL 3.69",
	}, "\n"), nil
}
