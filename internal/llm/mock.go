package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned oracle result, e.g. a scored evaluation:
//
//	MockResponse{Content: json.RawMessage(`{"score": 85, "tier": "good", ...}`)}
//
// Set Err instead to simulate a failing call.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider serves canned responses in FIFO order and records every
// request it sees. Tests assert on Calls to check prompts and schemas;
// the `mock` provider config also uses it so the server can run without
// an API key.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider preloaded with responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate pops the next canned response. An empty queue behaves like an
// unreachable provider.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{
		Content: next.Content,
		Usage:   next.Usage,
		Model:   "mock",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
