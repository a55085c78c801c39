package ocr

import (
	"context"
	"sync"
)

// MockResult is a canned result for the MockProvider.
type MockResult struct {
	Text       string
	Confidence float64
	Err        error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned results in FIFO order and records all requests.
type MockProvider struct {
	mu      sync.Mutex
	results []MockResult
	Calls   []Request
}

// NewMockProvider creates a MockProvider with the given canned results.
func NewMockProvider(results ...MockResult) *MockProvider {
	return &MockProvider{results: results}
}

// Extract returns the next canned result or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Extract(_ context.Context, req Request) (*Extraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.results) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	res := m.results[0]
	m.results = m.results[1:]

	if res.Err != nil {
		return nil, res.Err
	}

	return &Extraction{
		Text:       res.Text,
		Confidence: res.Confidence,
		Model:      "mock",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResult appends a canned result to the queue.
func (m *MockProvider) AddResult(res MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
}

// CallCount returns the number of Extract calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
