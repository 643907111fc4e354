// Package upload extracts the uploaded receipt image from a raw multipart body.
package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"price-tracker/models"
)

// ErrMalformed is returned when the body cannot be parsed as multipart data
var ErrMalformed = errors.New("malformed multipart body")

// Decode parses body as a multipart stream delimited by the boundary declared
// in contentType and returns the first part that carries a filename.
//
// A body without any file part is not an error: the returned file has no
// data and empty Filename/MimeType, and the caller decides what that means.
func Decode(body []byte, contentType string, base64Encoded bool) (*models.UploadedFile, error) {
	raw := body
	if base64Encoded {
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(body)))
		n, err := base64.StdEncoding.Decode(decoded, body)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 body: %v", ErrMalformed, err)
		}
		raw = decoded[:n]
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid content type: %v", ErrMalformed, err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrMalformed, mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing boundary", ErrMalformed)
	}

	reader := multipart.NewReader(bytes.NewReader(raw), boundary)
	file := &models.UploadedFile{}
	found := false

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		// Only the first file attachment is kept; later parts are still read
		// so a truncated stream is reported.
		if found || part.FileName() == "" {
			if _, err := io.Copy(io.Discard, part); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			continue
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, part); err != nil {
			return nil, fmt.Errorf("%w: reading file part: %v", ErrMalformed, err)
		}

		file.Filename = part.FileName()
		file.MimeType = partMediaType(part.Header.Get("Content-Type"))
		file.Data = buf.Bytes()
		found = true
	}

	return file, nil
}

func partMediaType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.TrimSpace(header)
	}
	return mediaType
}

// PeekMediaType returns the declared media type of the first file part
// found in prefix, a leading slice of a body too large to decode. It
// returns "" when no file part header fits in prefix.
func PeekMediaType(prefix []byte, contentType string, base64Encoded bool) string {
	raw := prefix
	if base64Encoded {
		usable := len(prefix) - len(prefix)%4
		decoded := make([]byte, base64.StdEncoding.DecodedLen(usable))
		n, err := base64.StdEncoding.Decode(decoded, prefix[:usable])
		if err != nil {
			return ""
		}
		raw = decoded[:n]
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return ""
	}

	reader := multipart.NewReader(bytes.NewReader(raw), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err != nil {
			return ""
		}
		if part.FileName() != "" {
			return partMediaType(part.Header.Get("Content-Type"))
		}
	}
}
