// Package docx extracts paragraph text from Word documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the document body as one page, one paragraph per line.
// Explicit page breaks start a new page.
func (e *Extractor) Extract(_ context.Context, path string) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrExtraction, path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", domain.ErrExtraction, documentPart, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrExtraction, documentPart, err)
		}

		return parseDocumentXML(content)
	}

	return nil, fmt.Errorf("%w: %s has no %s", domain.ErrExtraction, path, documentPart)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text   []textElement `xml:"t"`
	Tabs   []struct{}    `xml:"tab"`
	Breaks []breakElem   `xml:"br"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type breakElem struct {
	Type string `xml:"type,attr"`
}

func (r run) pageBreak() bool {
	for _, b := range r.Breaks {
		if b.Type == "page" {
			return true
		}
	}
	return false
}

// parseDocumentXML splits the body into pages of newline-joined paragraphs.
func parseDocumentXML(content []byte) ([]string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrExtraction, documentPart, err)
	}

	var pages []string
	var page strings.Builder
	flush := func() {
		pages = append(pages, strings.TrimSpace(page.String()))
		page.Reset()
	}

	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, r := range para.Runs {
			if r.pageBreak() {
				page.WriteString(line.String())
				line.Reset()
				flush()
			}
			for range r.Tabs {
				line.WriteString("\t")
			}
			for _, t := range r.Text {
				line.WriteString(t.Content)
			}
		}
		page.WriteString(line.String())
		page.WriteString("\n")
	}
	flush()

	return pages, nil
}
