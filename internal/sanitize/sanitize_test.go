package sanitize

import (
	"strings"
	"testing"
)

func TestTextStripsMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "Spicy Ramen Bowl",
			want:  "Spicy Ramen Bowl",
		},
		{
			name:  "script removed",
			input: `Ramen<script>alert("xss")</script>`,
			want:  "Ramen",
		},
		{
			name:  "tags stripped but text kept",
			input: "<b>Bold</b> title",
			want:  "Bold title",
		},
		{
			name:  "img onerror removed",
			input: `Soup<img src=x onerror=alert(1)>`,
			want:  "Soup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInstructionsKeepsBenignMarkup(t *testing.T) {
	in := "Step 1: boil water.\n<em>Simmer</em> for 10 minutes."
	got := Instructions(in)
	if !strings.Contains(got, "<em>Simmer</em>") {
		t.Errorf("benign markup should survive, got %q", got)
	}
}

func TestInstructionsStripsScripts(t *testing.T) {
	in := `Boil water.<script>steal()</script><a href="javascript:x()">click</a>`
	got := Instructions(in)
	if strings.Contains(got, "script") || strings.Contains(got, "javascript:") {
		t.Errorf("script vectors should be stripped, got %q", got)
	}
	if !strings.Contains(got, "Boil water.") {
		t.Errorf("text content should be preserved, got %q", got)
	}
}
