package generation

import "context"

// MockClient is a configurable mock for testing generation flows.
// Set GenerateDocumentFunc to control behavior in tests.
type MockClient struct {
	GenerateDocumentFunc func(ctx context.Context, req *Request) (*Result, error)

	// Call tracking for verification
	GenerateDocumentCalls int
}

var _ Client = (*MockClient)(nil)

// GenerateDocument implements Client.
func (m *MockClient) GenerateDocument(ctx context.Context, req *Request) (*Result, error) {
	m.GenerateDocumentCalls++
	if m.GenerateDocumentFunc != nil {
		return m.GenerateDocumentFunc(ctx, req)
	}
	return &Result{
		Title:   documentTitle(req),
		Content: "mock content",
		Model:   "mock-model",
	}, nil
}
