package extractors

import (
	"github.com/custodia-labs/ragserve/internal/extractors/docx"
	"github.com/custodia-labs/ragserve/internal/extractors/html"
	"github.com/custodia-labs/ragserve/internal/extractors/markdown"
	"github.com/custodia-labs/ragserve/internal/extractors/pdf"
	"github.com/custodia-labs/ragserve/internal/extractors/plaintext"
)

// DefaultRegistry returns a registry with all built-in extractors.
// Files without an extension are treated as PDF.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	pdfExtractor := pdf.New()
	r.Register(pdfExtractor)
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(docx.New())
	r.Register(html.New())
	r.SetFallback(pdfExtractor)

	return r
}
