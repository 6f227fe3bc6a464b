package app

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"dummycoder/domain/dummy"
)

// UniverseReport is the human-readable summary of the values found per column
type UniverseReport struct {
	Markdown string        `json:"markdown"`
	HTML     template.HTML `json:"html"`
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"$", `\$`,
	"~", `\~`,
	"&", `\&`,
)

// reportExtensions leaves out the extensions that would reinterpret survey
// answers such as "$50-$100", "~~n/a~~" or bare URLs.
const reportExtensions = parser.CommonExtensions &^ (parser.MathJax | parser.Strikethrough | parser.Autolink)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// markdownText makes s render literally inside a report paragraph
func markdownText(s string) string {
	return markdownEscaper.Replace(lineBreaks.Replace(s))
}

// RenderUniverseReport lists the unique responses of each encoded column, one
// paragraph per column, and renders the Markdown to HTML with raw HTML and
// smart punctuation disabled.
func RenderUniverseReport(universes []dummy.Universe) UniverseReport {
	var b strings.Builder
	if len(universes) == 0 {
		b.WriteString("No multi-response columns selected.\n")
	}
	for i, u := range universes {
		if i > 0 {
			b.WriteString("\n")
		}
		values := make([]string, len(u.Values))
		for j, v := range u.Values {
			values[j] = markdownText(v)
		}
		fmt.Fprintf(&b, "**Unique responses in %s:** \\[%s\\]\n", markdownText(u.Column), strings.Join(values, ", "))
	}

	md := b.String()
	p := parser.NewWithExtensions(reportExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	rendered := markdown.ToHTML([]byte(md), p, renderer)

	return UniverseReport{
		Markdown: md,
		HTML:     template.HTML(rendered),
	}
}
