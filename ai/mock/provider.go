package mock

import "github.com/guilhermexp/recall/ai"

// MockProvider bundles the mock embedder and summarizer behind ai.Provider.
type MockProvider struct {
	MockEmbedder   *MockEmbedder
	MockSummarizer *MockSummarizer
}

// NewMockProvider creates a provider whose services use default deterministic
// behavior. The concrete doubles are exported so tests can inject failures.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder:   NewMockEmbedder(),
		MockSummarizer: NewMockSummarizer(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Summarizer returns the mock summary service.
func (p *MockProvider) Summarizer() ai.Summarizer {
	return p.MockSummarizer
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
