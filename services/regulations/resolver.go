package regulations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ResolvedDetail is the metadata and PDF location recovered from a
// regulation's detail page.
type ResolvedDetail struct {
	Title               string
	PDFURL              string
	Pemrakarsa          string
	TempatPenetapan     string
	TanggalPenetapan    *time.Time
	TanggalDiundang     *time.Time
	Status              string
	PejabatPenetap      string
	NomorPengundangan   string
	NomorTambahan       string
	PejabatPengundangan string
	Tentang             string
}

// legalStatusMap normalizes the detail table's free-text status cell to the
// closed enum Work.LegalStatus accepts.
var legalStatusMap = map[string]string{
	"berlaku":         "in_force",
	"diubah":          "amended",
	"diubah sebagian": "amended",
	"dicabut":         "revoked",
	"dicabut sebagian": "revoked",
	"tidak berlaku":   "not_in_force",
	"belum berlaku":   "not_in_force",
}

// normalizeLegalStatus maps free text to the closed status enum, falling
// back to "in_force" (the common case) when the label isn't recognized.
func normalizeLegalStatus(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if status, ok := legalStatusMap[key]; ok {
		return status
	}
	for label, status := range legalStatusMap {
		if strings.Contains(key, label) {
			return status
		}
	}
	return "in_force"
}

var indonesianMonths = map[string]time.Month{
	"januari": time.January, "februari": time.February, "maret": time.March,
	"april": time.April, "mei": time.May, "juni": time.June,
	"juli": time.July, "agustus": time.August, "september": time.September,
	"oktober": time.October, "november": time.November, "desember": time.December,
}

// Resolver fetches a regulation's detail page to recover its PDF URL and
// metadata, falling back to the slug-derived PDF URL when the page itself
// never links one. Grounded on the teacher's crawlDetailPage.
type Resolver struct {
	fetcher *Fetcher
	baseURL string
}

// NewResolver builds a Resolver.
func NewResolver(fetcher *Fetcher, baseURL string) *Resolver {
	return &Resolver{fetcher: fetcher, baseURL: baseURL}
}

// Resolve fetches detailURL and extracts title, PDF location, and metadata.
// slugFallbackPDF is used verbatim if no PDF link is found on the page.
func (r *Resolver) Resolve(ctx context.Context, detailURL, slugFallbackPDF string) (*ResolvedDetail, error) {
	doc, err := r.fetcher.FetchHTML(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("fetch detail page: %w", err)
	}

	detail := &ResolvedDetail{
		Title: strings.TrimSpace(doc.Find("h1, .title, .judul").First().Text()),
	}

	// Step 1: look for the PDF link inside a "Dokumen" table row, the site's
	// canonical location for the download link.
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(row.Find("td, th").First().Text()))
		if !strings.Contains(label, "dokumen") {
			return true
		}
		href, ok := row.Find("a[href]").First().Attr("href")
		if ok {
			detail.PDFURL = buildFullURL(r.baseURL, href)
			return false
		}
		return true
	})

	// Step 2: any anchor on the page that plausibly links a PDF.
	if detail.PDFURL == "" {
		doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if strings.Contains(strings.ToLower(href), ".pdf") {
				detail.PDFURL = buildFullURL(r.baseURL, href)
				return false
			}
			return true
		})
	}

	// Step 3: slug-derived fallback.
	if detail.PDFURL == "" {
		detail.PDFURL = slugFallbackPDF
	}

	extractMetadata(doc, detail)

	return detail, nil
}

func extractMetadata(doc *goquery.Document, detail *ResolvedDetail) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("td, th").First().Text()))
		value := strings.TrimSpace(row.Find("td").Last().Text())
		if value == "" {
			return
		}

		switch {
		case strings.Contains(label, "pemrakarsa"):
			detail.Pemrakarsa = value
		case strings.Contains(label, "tempat penetapan"):
			detail.TempatPenetapan = value
		case strings.Contains(label, "tanggal penetapan"):
			if t := parseIndonesianDate(value); t != nil {
				detail.TanggalPenetapan = t
			}
		case strings.Contains(label, "tanggal diundangkan") || strings.Contains(label, "tanggal pengundangan"):
			if t := parseIndonesianDate(value); t != nil {
				detail.TanggalDiundang = t
			}
		case strings.Contains(label, "pejabat penetap"):
			detail.PejabatPenetap = value
		case strings.Contains(label, "pejabat pengundangan"):
			detail.PejabatPengundangan = value
		case strings.Contains(label, "nomor pengundangan"):
			detail.NomorPengundangan = value
		case strings.Contains(label, "nomor tambahan"):
			detail.NomorTambahan = value
		case strings.Contains(label, "tentang"):
			detail.Tentang = value
		case strings.Contains(label, "status"):
			detail.Status = normalizeLegalStatus(value)
		}
	})
}

// parseIndonesianDate parses "13 Juli 2003" style dates as well as the
// common numeric formats, mirroring the teacher's parseDate.
func parseIndonesianDate(s string) *time.Time {
	s = strings.TrimSpace(s)

	fields := strings.Fields(s)
	if len(fields) == 3 {
		if month, ok := indonesianMonths[strings.ToLower(fields[1])]; ok {
			var day, year int
			if _, err := fmt.Sscanf(fields[0], "%d", &day); err == nil {
				if _, err := fmt.Sscanf(fields[2], "%d", &year); err == nil {
					t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
					return &t
				}
			}
		}
	}

	for _, layout := range []string{"02-01-2006", "02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}
