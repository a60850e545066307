package regulations

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFQuality classifies how much of a PDF's text is actually embedded,
// versus scanned pages with no text layer at all.
type PDFQuality string

const (
	PDFQualityBornDigital  PDFQuality = "born_digital"
	PDFQualityScannedClean PDFQuality = "scanned_clean"
	PDFQualityImageOnly    PDFQuality = "image_only"
)

// ExtractedPDF is the result of walking every page of a PDF.
type ExtractedPDF struct {
	Text       string
	PageCount  int
	Quality    PDFQuality
	Confidence float64
}

var headerFooterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*-\s*\d+\s*-\s*$`),
	regexp.MustCompile(`(?m)^\s*Halaman\s+\d+\s*(dari|of)\s+\d+\s*$`),
	regexp.MustCompile(`(?m)^\s*www\.peraturan\.go\.id\s*$`),
	regexp.MustCompile(`(?m)^\s*\d+\s*$`),
	// "PRESIDEN REPUBLIK INDONESIA" is stamped on nearly every page of a
	// gazetted regulation; OCR on the scanned variants frequently mangles it
	// into "FRESIDEN ..." or "... REPUEUK INDONESIA".
	regexp.MustCompile(`(?mi)^\s*(P|F)RESIDEN\s+REPU(BLIK|EUK)\s+INDONESIA\s*$`),
	regexp.MustCompile(`(?m)^\s*SK\s*No\.?\s*\d*\s*$`),
}

const blankPageThreshold = 20 // non-whitespace characters

// ExtractPDF walks every page of raw PDF bytes, strips header/footer noise,
// de-duplicates text that repeats across a page boundary (common when a
// sentence is re-rendered on both the outgoing and incoming page), and
// classifies the overall document quality.
func ExtractPDF(data []byte) (*ExtractedPDF, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	totalPages := reader.NumPage()
	pageTexts := make([]string, 0, totalPages)
	textPages, imagePages := 0, 0

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		text = stripHeaderFooter(text)

		if nonWhitespaceLen(text) >= blankPageThreshold {
			textPages++
		}

		if pageHasImageXObject(page) {
			imagePages++
		}

		pageTexts = append(pageTexts, text)
	}

	fullText := joinWithOverlapDedup(pageTexts)
	fullText = collapseBlankLines(fullText)

	quality, confidence := classifyQuality(totalPages, textPages, imagePages)

	return &ExtractedPDF{
		Text:       fullText,
		PageCount:  totalPages,
		Quality:    quality,
		Confidence: confidence,
	}, nil
}

func stripHeaderFooter(text string) string {
	for _, re := range headerFooterPatterns {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

func nonWhitespaceLen(text string) int {
	n := 0
	for _, r := range text {
		if !strings.ContainsRune(" \t\r\n", r) {
			n++
		}
	}
	return n
}

// joinWithOverlapDedup joins consecutive page texts, trimming a duplicated
// tail/head run when a PDF re-renders the last line or two of one page as
// the first line(s) of the next (a common artifact of page-break reflow).
// Scans candidate overlap lengths from 200 down to 11 characters, longest
// match wins, matching SPEC_FULL.md §4.2.
func joinWithOverlapDedup(pages []string) string {
	if len(pages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(pages[0])

	for i := 1; i < len(pages); i++ {
		prev := b.String()
		cur := pages[i]

		maxLen := 200
		if maxLen > len(prev) {
			maxLen = len(prev)
		}
		if maxLen > len(cur) {
			maxLen = len(cur)
		}

		overlap := 0
		for n := maxLen; n >= 11; n-- {
			if strings.HasSuffix(prev, cur[:n]) {
				overlap = n
				break
			}
		}

		b.WriteString("\n")
		b.WriteString(cur[overlap:])
	}

	return b.String()
}

var multiBlankLineRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankLines(text string) string {
	return multiBlankLineRe.ReplaceAllString(text, "\n\n")
}

func pageHasImageXObject(page pdf.Page) bool {
	resources := page.V.Key("Resources")
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return false
	}
	for _, key := range xobjects.Keys() {
		obj := xobjects.Key(key)
		if obj.Key("Subtype").Name() == "Image" {
			return true
		}
	}
	return false
}

// classifyQuality derives a PDFQuality and confidence score from the ratio
// of text-bearing pages to total pages and the presence of image XObjects.
func classifyQuality(totalPages, textPages, imagePages int) (PDFQuality, float64) {
	if totalPages == 0 {
		return PDFQualityImageOnly, 0
	}

	textRatio := float64(textPages) / float64(totalPages)
	imageRatio := float64(imagePages) / float64(totalPages)

	switch {
	case textRatio >= 0.9:
		return PDFQualityBornDigital, textRatio
	case textRatio >= 0.4:
		return PDFQualityScannedClean, textRatio
	case imageRatio > 0 && textRatio < 0.1:
		return PDFQualityImageOnly, 1 - textRatio
	default:
		return PDFQualityScannedClean, textRatio
	}
}

// junkMarkers are substrings found in the first bytes of a downloaded
// "PDF" that is actually an HTML access-denied or placeholder page.
var junkMarkers = []string{"Beranda", "Progsun", "Access Denied", "<html", "<!DOCTYPE"}

// LooksLikeJunkPDF inspects the first bytes of a download for markers that
// indicate the site served an error page instead of a real PDF.
func LooksLikeJunkPDF(data []byte) bool {
	n := 300
	if n > len(data) {
		n = len(data)
	}
	head := string(data[:n])
	for _, marker := range junkMarkers {
		if strings.Contains(head, marker) {
			return true
		}
	}
	return !bytes.HasPrefix(data, []byte("%PDF-"))
}
