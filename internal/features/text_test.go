package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "  Build   APIs\n\tin Go ", "Build APIs in Go"},
		{"paragraphs", "<p>Hello</p><p>World</p>", "Hello World"},
		{"inline markup", "We use <b>React</b> and <i>Go</i>.", "We use React and Go."},
		{"script removed", "<div>Job<script>track()</script></div>", "Job"},
		{"list items", "<ul><li>Go</li><li>SQL</li></ul>", "Go SQL"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}
