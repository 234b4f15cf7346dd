package llm

import "context"

// Client abstracts the vision-language provider used by the classifier.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// AnalyzeImage sends raw image bytes with their MIME type plus a text
	// prompt, and returns the model's free-text reply.
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error)
	// SourceName returns a short provider label for logs and metrics.
	SourceName() string
}
