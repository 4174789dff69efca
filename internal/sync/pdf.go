package sync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// PageExtractor renders a PDF into per-page images ready for extraction.
type PageExtractor interface {
	ExtractPages(ctx context.Context, pdfPath, outputDir string) ([]string, error)
}

// PDFProcessor renders PDF pages to JPEG by shelling out to pdftoppm from
// poppler-utils. Output files are named {stem}_page_NNN.jpg so the page
// number survives into the extraction step.
type PDFProcessor struct {
	DPI int
}

// NewPDFProcessor returns a processor rendering at 300 DPI, high enough for
// reliable text transcription from cookbook scans.
func NewPDFProcessor() *PDFProcessor {
	return &PDFProcessor{DPI: 300}
}

// ExtractPages renders every page of the PDF into outputDir and returns the
// image paths in page order.
func (p *PDFProcessor) ExtractPages(ctx context.Context, pdfPath, outputDir string) ([]string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("pdf not found: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	outPrefix := filepath.Join(outputDir, stem+"_page")

	// pdftoppm writes {prefix}-NNN.jpg with zero-padded page numbers.
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-jpeg",
		"-r", fmt.Sprintf("%d", p.DPI),
		pdfPath,
		outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	rendered, err := filepath.Glob(outPrefix + "-*.jpg")
	if err != nil {
		return nil, err
	}
	if len(rendered) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", filepath.Base(pdfPath))
	}
	sort.Strings(rendered)

	// Rename {stem}_page-NNN.jpg to {stem}_page_NNN.jpg.
	paths := make([]string, 0, len(rendered))
	for _, src := range rendered {
		dst := strings.Replace(src, stem+"_page-", stem+"_page_", 1)
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("failed to rename page image: %w", err)
		}
		paths = append(paths, dst)
	}
	return paths, nil
}
