package ocr

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrProviderUnavailable{}},
		MockResult{Err: &ErrRateLimit{}},
		MockResult{Text: "2 + 2", Confidence: 0.9},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	out, err := p.Extract(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if out.Text != "2 + 2" {
		t.Errorf("text = %q", out.Text)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrProviderUnavailable{}},
		MockResult{Err: &ErrProviderUnavailable{}},
		MockResult{Err: &ErrProviderUnavailable{}},
	)
	p := WithRetry(mock, fastRetryConfig(3))

	_, err := p.Extract(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetryInvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResult{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
		MockResult{Err: &ErrInvalidResponse{Err: errors.New("bad json again")}},
		MockResult{Text: "never reached", Confidence: 1},
	)
	p := WithRetry(mock, fastRetryConfig(5))

	_, err := p.Extract(context.Background(), Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2 (invalid response retried exactly once)", mock.CallCount())
	}
}

func TestRetryContextCanceledNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResult{Err: context.Canceled})
	p := WithRetry(mock, fastRetryConfig(3))

	_, err := p.Extract(context.Background(), Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}
