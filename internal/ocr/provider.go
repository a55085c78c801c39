// Package ocr extracts problem text from homework images using
// vision-capable model providers. Providers share one contract and one
// response schema; retry and validation sit in front as decorators.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// maxOutputTokens bounds every extraction response. Problem statements
// are short; anything longer is the model rambling.
const maxOutputTokens = 1024

// Provider sends one problem image to a vision model and returns the
// structured extraction.
type Provider interface {
	Extract(ctx context.Context, req Request) (*Extraction, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request is one image to read.
type Request struct {
	// ImageData is the raw image bytes.
	ImageData []byte

	// MediaType is the image MIME type, e.g. "image/png".
	MediaType string
}

// Extraction is the structured OCR result.
type Extraction struct {
	// Text is the problem statement, verbatim from the image.
	Text string `json:"text"`

	// Confidence is the model's own read certainty in [0, 1].
	Confidence float64 `json:"confidence"`

	// Model is the model that served the request.
	Model string `json:"-"`
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (used as schema name for OpenAI).
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// extractionSchema is the one response format every provider requests.
var extractionSchema = &Schema{
	Name:        "problem-extraction",
	Description: "Problem text extracted from a homework image",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "The complete problem statement, exactly as printed",
			},
			"confidence": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Certainty of the transcription, 0 to 1",
			},
		},
		"required":             []any{"text", "confidence"},
		"additionalProperties": false,
	},
}

const ocrSystemPrompt = `You transcribe a single math problem from a homework image.
Rules:
1. Copy the problem statement exactly as printed. Do not solve it, do not rephrase it, do not fix typos.
2. Keep numbers, operators, parentheses and variable names verbatim.
3. If parts are unreadable, transcribe what you can and lower the confidence accordingly.
4. Output only JSON matching the requested schema. Any text outside the JSON is an error.`

const ocrUserPrompt = `Transcribe the math problem in this image. Respond with JSON only.`

// compiledExtractionSchema compiles the one response schema on first
// use. The compiler wants a parsed JSON value, so the definition takes
// a round trip through encoding/json.
var compiledExtractionSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	defBytes, err := json.Marshal(extractionSchema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", extractionSchema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(url)
})

// parseExtraction validates the raw provider output against the
// extraction schema and decodes it. Everything the model can get wrong
// surfaces as ErrInvalidResponse so the retry layer re-asks once.
func parseExtraction(raw json.RawMessage, model string) (*Extraction, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledExtractionSchema()
	if err != nil {
		return nil, fmt.Errorf("compile extraction schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var out Extraction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode extraction: %w", err)}
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("extraction has empty text")}
	}
	out.Model = model
	return &out, nil
}
