package parser

import (
	"testing"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected Reply
	}{
		{
			name:     "well-formed reply",
			response: "TITLE: Large pothole on Main St\nTYPE: Pothole\nDESCRIPTION: Deep pothole near the crosswalk, roughly half a meter wide.",
			expected: Reply{
				Title:       "Large pothole on Main St",
				Type:        "Pothole",
				Description: "Deep pothole near the crosswalk, roughly half a meter wide.",
			},
		},
		{
			name:     "missing TYPE line",
			response: "TITLE: Overflowing bin\nDESCRIPTION: Garbage spilling onto the sidewalk.",
			expected: Reply{
				Title:       "Overflowing bin",
				Type:        "",
				Description: "Garbage spilling onto the sidewalk.",
			},
		},
		{
			name:     "missing TITLE line",
			response: "TYPE: Uncollected Waste\nDESCRIPTION: Bags left out for a week.",
			expected: Reply{
				Title:       "",
				Type:        "Uncollected Waste",
				Description: "Bags left out for a week.",
			},
		},
		{
			name:     "reordered lines",
			response: "DESCRIPTION: Wires hanging from a broken pole.\nTITLE: Exposed wiring\nTYPE: Electrical Hazard",
			expected: Reply{
				Title:       "Exposed wiring",
				Type:        "Electrical Hazard",
				Description: "Wires hanging from a broken pole.",
			},
		},
		{
			name:     "labels with surrounding chatter",
			response: "Sure, here is the analysis:\nTITLE: Blocked road\nTYPE: Road Block\nDESCRIPTION: Fallen tree blocking both lanes.\nLet me know if you need more detail.",
			expected: Reply{
				Title:       "Blocked road",
				Type:        "Road Block",
				Description: "Fallen tree blocking both lanes.",
			},
		},
		{
			name:     "empty reply",
			response: "",
			expected: Reply{},
		},
		{
			name:     "no labels at all",
			response: "I cannot identify any civic issue in this image.",
			expected: Reply{},
		},
		{
			name:     "whitespace around values",
			response: "TITLE:    Streetlight out   \nTYPE:   Streetlight Not Working\nDESCRIPTION:  Lamp dark for three nights. ",
			expected: Reply{
				Title:       "Streetlight out",
				Type:        "Streetlight Not Working",
				Description: "Lamp dark for three nights.",
			},
		},
		{
			name:     "label with empty value",
			response: "TITLE:\nTYPE: Other\nDESCRIPTION: Something odd.",
			expected: Reply{
				Title:       "",
				Type:        "Other",
				Description: "Something odd.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReply(tt.response)

			if got.Title != tt.expected.Title {
				t.Errorf("ParseReply() title = %q, want %q", got.Title, tt.expected.Title)
			}
			if got.Type != tt.expected.Type {
				t.Errorf("ParseReply() type = %q, want %q", got.Type, tt.expected.Type)
			}
			if got.Description != tt.expected.Description {
				t.Errorf("ParseReply() description = %q, want %q", got.Description, tt.expected.Description)
			}
		})
	}
}

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"pothole", "Pothole"},
		{"POTHOLE", "Pothole"},
		{"Pothole", "Pothole"},
		{" sewage overflow ", "Sewage Overflow"},
		{"other", "Other"},
		{"Graffiti", "Graffiti"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CanonicalCategory(tt.input); got != tt.expected {
				t.Errorf("CanonicalCategory(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKnownCategory(t *testing.T) {
	if !KnownCategory("illegal waste dumping") {
		t.Errorf("KnownCategory() should match vocabulary case-insensitively")
	}
	if KnownCategory("Graffiti") {
		t.Errorf("KnownCategory() should not match values outside the vocabulary")
	}
}
