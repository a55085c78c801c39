package ocr

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration, wrapped with retry
// middleware.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown OCR provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(base, cfg.Retry), nil
}

// NewExtractorFromEnv builds an Extractor from environment
// configuration: MATHPILOT_* variables first, then the standard
// provider API key variables via DiscoverConfig.
func NewExtractorFromEnv(ctx context.Context) (*Extractor, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewExtractor(provider), nil
}
