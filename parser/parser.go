package parser

import "strings"

// Categories is the fixed vocabulary of civic-issue categories the
// classifier prompt constrains TYPE to. specificType is not validated
// against it unless strict mode is enabled; the vocabulary stays open.
var Categories = []string{
	"Theft",
	"Fire Outbreak",
	"Illegal Waste Dumping",
	"Pothole",
	"Uncollected Waste",
	"Uneven Road",
	"Unclosed Manhole",
	"Electrical Hazard",
	"Natural Disaster",
	"Road Block",
	"Sewage Overflow",
	"Streetlight Not Working",
	"Exposed Wiring",
	"Other",
}

// Reply holds the fields parsed from a classifier reply. Absent labels
// leave the corresponding field empty; they never fail the parse.
type Reply struct {
	Title       string
	Type        string
	Description string
}

// ParseReply extracts the three labeled lines from a model reply. Each
// label is located independently, so a malformed, reordered, or partial
// reply degrades field by field instead of failing as a whole.
func ParseReply(text string) Reply {
	return Reply{
		Title:       extractLine(text, "TITLE:"),
		Type:        extractLine(text, "TYPE:"),
		Description: extractLine(text, "DESCRIPTION:"),
	}
}

// extractLine finds the first occurrence of label and returns the rest of
// that line, trimmed. Returns "" when the label is absent.
func extractLine(text, label string) string {
	idx := strings.Index(text, label)
	if idx == -1 {
		return ""
	}
	rest := text[idx+len(label):]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

// CanonicalCategory maps a case-insensitive vocabulary match to its
// canonical casing. Unknown values pass through unchanged.
func CanonicalCategory(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, cat := range Categories {
		if strings.EqualFold(trimmed, cat) {
			return cat
		}
	}
	return trimmed
}

// KnownCategory reports whether value matches the vocabulary
// case-insensitively.
func KnownCategory(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, cat := range Categories {
		if strings.EqualFold(trimmed, cat) {
			return true
		}
	}
	return false
}
