package ocr

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"text": "2x + 3 = 7", "confidence": 0.95}`, false},
		{"confidence at bounds", `{"text": "x", "confidence": 1}`, false},
		{"missing text", `{"confidence": 0.9}`, true},
		{"missing confidence", `{"text": "2x"}`, true},
		{"confidence above one", `{"text": "2x", "confidence": 1.5}`, true},
		{"extra property", `{"text": "2x", "confidence": 0.9, "answer": "4"}`, true},
		{"blank text", `{"text": "  ", "confidence": 0.9}`, true},
		{"not json", `text: 2x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseExtraction(json.RawMessage(tt.raw), "m1")
			if tt.wantErr {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Errorf("error = %v, want ErrInvalidResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Model != "m1" {
				t.Errorf("model = %q, want m1", out.Model)
			}
		})
	}
}

func TestParseExtractionFields(t *testing.T) {
	out, err := parseExtraction(json.RawMessage(`{"text": "Find sin(30 degrees)", "confidence": 0.88}`), "m1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "Find sin(30 degrees)" || out.Confidence != 0.88 {
		t.Errorf("unexpected extraction: %+v", out)
	}
}
