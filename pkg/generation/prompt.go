package generation

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a study assistant that produces well-structured academic documents.
Write in clear markdown. Do not include any preamble before the document body.`

// documentTitle builds the caller-visible title for a generated document.
func documentTitle(req *Request) string {
	label := strings.ToUpper(req.DocumentType[:1]) + req.DocumentType[1:]
	return fmt.Sprintf("%s: %s", label, req.Topic)
}

// buildPrompt renders the user prompt for a generation request.
func buildPrompt(req *Request) string {
	var b strings.Builder
	switch req.DocumentType {
	case "summary":
		fmt.Fprintf(&b, "Write a concise summary of: %s\n", req.Topic)
	case "outline":
		fmt.Fprintf(&b, "Write a hierarchical study outline for: %s\n", req.Topic)
	case "flashcards":
		fmt.Fprintf(&b, "Write question/answer flashcards covering: %s\n", req.Topic)
	default:
		fmt.Fprintf(&b, "Write detailed study notes on: %s\n", req.Topic)
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions: %s\n", req.Instructions)
	}
	return b.String()
}
