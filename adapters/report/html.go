package report

import (
	"bytes"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"carepath/domain/compare"
	"carepath/ports"
)

// HTMLRenderer wraps the markdown renderer and converts its output to HTML
// for the web UI.
type HTMLRenderer struct {
	md *MarkdownRenderer
}

// NewHTMLRenderer creates an HTML renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: NewMarkdownRenderer()}
}

// ComparisonHTML renders the comparison report as an HTML fragment.
func (r *HTMLRenderer) ComparisonHTML(record *ports.RunRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.RenderComparison(&buf, record); err != nil {
		return nil, err
	}
	return toHTML(buf.Bytes()), nil
}

// SweepHTML renders the sweep report as an HTML fragment.
func (r *HTMLRenderer) SweepHTML(summary *compare.SweepSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.RenderSweep(&buf, summary); err != nil {
		return nil, err
	}
	return toHTML(buf.Bytes()), nil
}

func toHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

var _ ports.ReportRenderer = (*MarkdownRenderer)(nil)
