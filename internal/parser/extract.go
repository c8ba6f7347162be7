package parser

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFile is returned for uploads that are neither PDF nor text.
var ErrUnsupportedFile = errors.New("unsupported file type")

// fileText decodes an uploaded file into plain text for the prompt.
func fileText(f *File) (string, error) {
	data, err := base64.StdEncoding.DecodeString(f.Data)
	if err != nil {
		return "", fmt.Errorf("decode file: %w", err)
	}

	mime := strings.ToLower(strings.TrimSpace(f.MimeType))
	switch {
	case mime == "application/pdf":
		return pdfText(data)
	case strings.HasPrefix(mime, "text/"), mime == "application/json":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, f.MimeType)
	}
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(text), nil
}
