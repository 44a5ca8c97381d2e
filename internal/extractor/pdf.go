package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dslipak/pdf"

	"recipe-extraction-api/internal/classifier"
)

// DocumentTextStrategy reads a recipe card published as a PDF.
func DocumentTextStrategy() Strategy {
	return Strategy{
		Name:       MethodDocumentText,
		Applies:    func(s classifier.SourceType) bool { return s == classifier.PDFDocument },
		Confidence: fixedConfidence(textConfidence),
		Extract: func(ctx context.Context, t Target) (*Draft, error) {
			page, err := t.Fetch.Fetch(ctx, t.URL)
			if err != nil {
				return nil, err
			}
			if !page.IsPDF() {
				return nil, fmt.Errorf("%w: detected %s", ErrNotPDF, page.FileType())
			}

			text, err := pdfText(page.Body)
			if err != nil {
				return nil, err
			}
			slog.Debug("Extracted PDF text", "url", t.URL, "chars", len(text))

			ingredients, instructions := textSections(text)
			if len(ingredients) == 0 && len(instructions) == 0 {
				return nil, ErrNotRecipe
			}
			return &Draft{
				Title:        firstLine(text),
				Ingredients:  ingredients,
				Instructions: instructions,
				Raw:          text,
			}, nil
		},
	}
}

// pdfText returns the plain text of a PDF held in memory.
func pdfText(body []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to get plain text from PDF: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read text from PDF: %w", err)
	}
	return buf.String(), nil
}
