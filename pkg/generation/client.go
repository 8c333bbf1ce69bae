// Package generation wraps the external document-generation providers
// behind a single Client interface. The command layer never sees provider
// SDK types.
package generation

import "context"

// Request describes one document to generate.
type Request struct {
	DocumentType string // notes, summary, outline, flashcards
	Topic        string
	Instructions string
}

// Result is a generated document.
type Result struct {
	Title   string
	Content string
	Model   string
}

// Client generates study documents from structured requests.
type Client interface {
	GenerateDocument(ctx context.Context, req *Request) (*Result, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string // optional override for OpenAI-compatible endpoints
	Model     string
	MaxTokens int
}
