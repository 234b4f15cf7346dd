package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Client is a deterministic, no-network LLM stub intended for CI and local
// end-to-end tests. It returns a reply in the three-line classifier format
// so downstream parsing exercises the full pipeline.
type Client struct {
	// Reply, when set, is returned verbatim for every call.
	Reply string
	// Err, when set, is returned for every call.
	Err error
}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	if c.Reply != "" {
		return c.Reply, nil
	}

	// Make output deterministic per-input so tests are stable.
	sum := sha256.Sum256(imageData)
	short := hex.EncodeToString(sum[:4])

	return fmt.Sprintf("TITLE: Stub issue %s\nTYPE: Other\nDESCRIPTION: Deterministic stub classification for testing.", short), nil
}
