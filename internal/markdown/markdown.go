// Package markdown renders user-written markdown (AI responses, opinions)
// to sanitized HTML and plain-text excerpts.
package markdown

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	// Fenced code blocks keep their language class for client-side highlighting.
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
	return p
}

// Render converts markdown to sanitized HTML. Raw HTML in the source is
// escaped by goldmark and anything left is filtered by the UGC policy.
func Render(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return policy.Sanitize(source)
	}
	return enhance(policy.Sanitize(buf.String()))
}

// enhance adds lazy loading and referrer hiding to images.
func enhance(htmlStr string) string {
	if !strings.Contains(htmlStr, "<img") {
		return htmlStr
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("loading", "lazy")
		s.SetAttr("referrerpolicy", "no-referrer")
	})
	out, err := doc.Find("body").Html()
	if err != nil || out == "" {
		return htmlStr
	}
	return out
}

// Excerpt returns the plain text of the rendered markdown with whitespace
// collapsed, cut to at most maxRunes runes with a trailing ellipsis.
func Excerpt(source string, maxRunes int) string {
	rendered := Render(source)
	if rendered == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return truncate(strings.Join(strings.Fields(source), " "), maxRunes)
	}
	// Block elements render without separating whitespace.
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, pre, blockquote, br, td").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return truncate(strings.Join(strings.Fields(doc.Text()), " "), maxRunes)
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}
