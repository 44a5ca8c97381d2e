package fetcher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched resource.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	// Rendered is true when the body came from a headless browser.
	Rendered bool
}

// BaseURL is the URL relative links should resolve against.
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// Document parses the body. Each call returns a fresh tree so one caller's
// edits never leak into another's.
func (p *Page) Document() (*goquery.Document, error) {
	switch p.FileType() {
	case "pdf", "zip", "png", "jpeg":
		return nil, fmt.Errorf("%w: detected %s", ErrNotHTML, p.FileType())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// IsPDF reports whether the body is a PDF, by header or magic bytes.
func (p *Page) IsPDF() bool {
	return p.FileType() == "pdf" ||
		(strings.Contains(strings.ToLower(p.ContentType), "application/pdf") && len(p.Body) > 0 && !looksLikeHTML(p.Body))
}

// FileType sniffs the first bytes of the body.
func (p *Page) FileType() string {
	return detectFileType(p.Body)
}

func detectFileType(body []byte) string {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}

	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return "pdf"
	}
	if looksLikeHTML(head) {
		return "html"
	}
	if len(head) >= 4 {
		switch {
		case bytes.HasPrefix(head, []byte{0x50, 0x4B, 0x03, 0x04}):
			return "zip"
		case bytes.HasPrefix(head, []byte{0x89, 0x50, 0x4E, 0x47}):
			return "png"
		case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
			return "jpeg"
		}
	}
	return "unknown"
}

func looksLikeHTML(head []byte) bool {
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := bytes.ToLower(head)
	for _, marker := range []string{"<html", "<!doctype html", "<head", "<body", "<title>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return true
		}
	}
	return false
}
