package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
		absent   []string
	}{
		{"empty", "   ", nil, []string{"<p>"}},
		{"emphasis", "**bold** and _em_", []string{"<strong>bold</strong>", "<em>em</em>"}, nil},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}, nil},
		{"code block keeps language", "```go\nfmt.Println(1)\n```", []string{`<code class="language-go">`}, nil},
		{"script stripped", "hi <script>alert(1)</script>", nil, []string{"<script", "alert(1)</script>"}},
		{"javascript link stripped", "[x](javascript:alert(1))", nil, []string{"javascript:"}},
		{"external link hardened", "[site](https://example.com)", []string{`target="_blank"`, "noreferrer"}, nil},
		{"images are lazy", "![alt](https://example.com/a.png)", []string{`loading="lazy"`, `referrerpolicy="no-referrer"`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(tt.source)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, bad := range tt.absent {
				assert.NotContains(t, out, bad)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Title Some bold text. item one item two", Excerpt("# Title\n\nSome **bold** text.\n\n- item one\n- item two", 0))
	assert.Equal(t, "", Excerpt("", 10))

	long := strings.Repeat("가나다 ", 50)
	got := Excerpt(long, 10)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 11)
}
