package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"policyassist-backend/models"

	"github.com/unidoc/unipdf/v3/extractor"
	pdfmodel "github.com/unidoc/unipdf/v3/model"
)

// DetectFormat maps a filename extension to a source format. Anything outside
// {pdf, text} is rejected before any external service is touched.
func DetectFormat(filename string) (models.SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.SourceFormatPDF, nil
	case ".txt", ".text":
		return models.SourceFormatText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ExtractPages decodes a raw document into per-page text. Page i of the
// result is page i+1 of the document. Plain text documents are split on form
// feeds; without any the whole file is one page.
func ExtractPages(data []byte, format models.SourceFormat) ([]string, error) {
	switch format {
	case models.SourceFormatText:
		pages := textPages(data)
		if allBlank(pages) {
			return nil, fmt.Errorf("%w: document contains no extractable text", ErrParseFailure)
		}
		return pages, nil
	case models.SourceFormatPDF:
		return pdfPages(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func textPages(data []byte) []string {
	text := string(data)
	if strings.Contains(text, "\f") {
		return strings.Split(text, "\f")
	}
	return []string{text}
}

func pdfPages(data []byte) ([]string, error) {
	reader, err := pdfmodel.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrParseFailure, i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrParseFailure, i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrParseFailure, i, err)
		}
		pages = append(pages, text)
	}

	if allBlank(pages) {
		return nil, fmt.Errorf("%w: document contains no extractable text", ErrParseFailure)
	}
	return pages, nil
}

func allBlank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
