package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"

	"reportify/llm"
	"reportify/metrics"
	"reportify/models"
	"reportify/parser"
)

// promptTemplate instructs the model to answer in the fixed three-line
// format the parser owns. The TYPE list is filled from parser.Categories.
const promptTemplate = `
Analyze this image of a civic issue and respond EXACTLY in this format:
TITLE: short title
TYPE: one of (%s)
DESCRIPTION: short description (max 30 words)
`

// Classifier turns an uploaded photo into a ClassificationResult. It never
// returns an error to the caller: every failure mode degrades to an empty
// result so the submitter falls back to manual entry.
type Classifier struct {
	client llm.Client
}

// New creates a classifier backed by the given vision client.
func New(client llm.Client) *Classifier {
	log.Infof("image classifier using %s", client.SourceName())
	return &Classifier{client: client}
}

// Prompt returns the classification prompt sent to the vision model.
func Prompt() string {
	return fmt.Sprintf(promptTemplate, strings.Join(parser.Categories, ", "))
}

// Classify sends the image to the vision model and parses the reply.
// Exactly one provider attempt is made; transport errors, non-success
// statuses, rate limits, and malformed replies all produce the degraded
// result with Success=false.
func (c *Classifier) Classify(ctx context.Context, imageData []byte, mimeType string) models.ClassificationResult {
	reply, err := c.client.AnalyzeImage(ctx, imageData, mimeType, Prompt())
	if err != nil {
		log.WithError(err).Warnf("%s classification failed, falling back to manual entry", c.client.SourceName())
		metrics.ClassificationsTotal.WithLabelValues("error").Inc()
		return models.ClassificationResult{}
	}

	parsed := parser.ParseReply(reply)
	result := models.ClassificationResult{
		Title:       parsed.Title,
		Type:        parser.CanonicalCategory(parsed.Type),
		Description: parsed.Description,
		Success:     parsed.Title != "" && parsed.Type != "",
	}

	if result.Success {
		metrics.ClassificationsTotal.WithLabelValues("success").Inc()
	} else {
		log.Warnf("classifier reply missing labeled lines, degrading: %q", truncate(reply, 120))
		metrics.ClassificationsTotal.WithLabelValues("degraded").Inc()
	}
	return result
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
