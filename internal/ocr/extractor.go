package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

// Extractor reads a problem image from disk, runs it through a vision
// Provider, and returns normalized text with the model's confidence.
// It satisfies the session's OCR collaborator contract.
type Extractor struct {
	provider Provider
}

// NewExtractor wraps a Provider as a session collaborator.
func NewExtractor(provider Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract turns the referenced image into problem text. An unreadable
// image or an empty transcription fails with ParseError so the session
// counts the problem as a skip, not a fatal error.
func (e *Extractor) Extract(ctx context.Context, imageRef string) (string, float64, error) {
	data, err := os.ReadFile(imageRef)
	if err != nil {
		return "", 0, fmt.Errorf("read problem image: %w", err)
	}

	out, err := e.provider.Extract(ctx, Request{
		ImageData: data,
		MediaType: mediaTypeFor(imageRef),
	})
	if err != nil {
		return "", 0, fmt.Errorf("extract text from %s: %w", filepath.Base(imageRef), err)
	}

	text := NormalizeText(out.Text)
	if text == "" {
		return "", 0, &problem.ParseError{Reason: "OCR produced no usable text"}
	}

	conf := out.Confidence
	if conf <= 0 || conf > 1 {
		conf = 0.5
	}
	return text, conf, nil
}

// mediaTypeFor maps an image file extension to its MIME type.
func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
