// Package document converts statement PDFs into ordered per-page text.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is a single page's extracted text with its 1-based page number.
type PageText struct {
	PageNumber int
	Text       string
}

// Pages is the extraction result for one document. Pages that yielded no
// text are omitted from Pages but counted in SkippedPages, so callers can
// observe the mismatch against TotalPages.
type Pages struct {
	Name         string
	Pages        []PageText
	TotalPages   int
	SkippedPages int
}

// PageCount returns the number of pages that produced extractable text.
func (p *Pages) PageCount() int {
	return len(p.Pages)
}

// ReadError indicates the source document is corrupt or unparsable.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read document %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ExtractPages extracts text from a PDF file on disk.
func ExtractPages(path string) (*Pages, error) {
	name := filepath.Base(path)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &ReadError{Name: name, Err: err}
	}
	defer f.Close()

	return extract(name, r)
}

// ExtractPagesFromBytes extracts text from an in-memory PDF, e.g. one
// fetched from object storage.
func ExtractPagesFromBytes(name string, data []byte) (*Pages, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ReadError{Name: name, Err: err}
	}
	return extract(name, r)
}

func extract(name string, r *pdf.Reader) (result *Pages, err error) {
	// The upstream parser panics on some malformed cross-reference tables;
	// surface those as a ReadError like any other corrupt input.
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &ReadError{Name: name, Err: fmt.Errorf("malformed pdf: %v", rec)}
		}
	}()

	total := r.NumPage()
	result = &Pages{
		Name:       name,
		Pages:      make([]PageText, 0, total),
		TotalPages: total,
	}

	// Pages are 1-indexed in ledongthuc/pdf.
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			result.SkippedPages++
			continue
		}

		text, perr := page.GetPlainText(nil)
		if perr != nil {
			result.SkippedPages++
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			// Scanned or image-only page: silently omitted, counted.
			result.SkippedPages++
			continue
		}

		result.Pages = append(result.Pages, PageText{PageNumber: i, Text: text})
	}

	return result, nil
}
