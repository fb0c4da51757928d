package httphandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{name: "empty", input: ""},
		{name: "blank", input: "  \n"},
		{
			name:     "emphasis and code",
			input:    "**bold** and `code`",
			contains: []string{"<strong>bold</strong>", "<code>code</code>"},
		},
		{
			name:     "gfm strikethrough",
			input:    "~~gone~~",
			contains: []string{"<del>gone</del>"},
		},
		{
			name:     "script stripped",
			input:    "hi <script>alert(1)</script>",
			contains: []string{"hi"},
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMarkdown(tt.input)
			if len(tt.contains) == 0 {
				assert.Empty(t, got)
			}
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestRenderDiffHunk(t *testing.T) {
	got := RenderDiffHunk("@@ -1,2 +1,2 @@\n-old\n+new\n same")

	assert.Equal(t,
		`<span class="diff-header">@@ -1,2 +1,2 @@</span>`+"\n"+
			`<span class="diff-del">-old</span>`+"\n"+
			`<span class="diff-add">+new</span>`+"\n"+
			`<span class="diff-ctx"> same</span>`,
		got)
	assert.Empty(t, RenderDiffHunk(""))
}
