package regulations

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bantuaku/peraturan-ingest/logger"
	"github.com/bantuaku/peraturan-ingest/models"
	"github.com/bantuaku/peraturan-ingest/services/storage"
)

// slugRe extracts (type, number, year) from a peraturan.go.id listing slug,
// e.g. "uu-no-13-tahun-2003", grounded on discover.py's SLUG_RE.
var slugRe = regexp.MustCompile(`(?i)^(uu|pp|perpres|perppu|permen|perban|perda)-no-(\d+[a-z]?)-tahun-(\d{4})`)

// totalCountRe parses "1.234 Peraturan" style totals with a thousands
// separator from the listing page header.
var totalCountRe = regexp.MustCompile(`([\d.]+)\s*Peraturan`)

const delayBetweenPages = 500 * time.Millisecond

// Discoverer walks peraturan.go.id's per-type paginated index, recording a
// CrawlJob for every regulation slug it has not seen before.
type Discoverer struct {
	fetcher        *Fetcher
	store          *Store
	cache          *storage.Redis
	baseURL        string
	freshnessHours int
	log            *logger.Logger
}

// NewDiscoverer builds a Discoverer.
func NewDiscoverer(fetcher *Fetcher, store *Store, cache *storage.Redis, baseURL string, freshnessHours int, log *logger.Logger) *Discoverer {
	return &Discoverer{
		fetcher:        fetcher,
		store:          store,
		cache:          cache,
		baseURL:        baseURL,
		freshnessHours: freshnessHours,
		log:            log,
	}
}

// discoveryListingTypes are the index paths crawled per discovery pass,
// mirroring discover.py's REG_TYPES map of (path segment -> catalog code).
var discoveryListingTypes = map[string]string{
	"uu":      "UU",
	"pp":      "PP",
	"perpres": "PERPRES",
	"perppu":  "PERPPU",
	"permen":  "PERMEN",
	"perda":   "PERDA",
}

// Run discovers every regulation type's index, skipping any type whose
// DiscoveryProgress is still fresh. Returns the number of listing entries
// upserted; entries whose job already existed are counted too, although
// UpsertJob leaves those rows unchanged.
func (d *Discoverer) Run(ctx context.Context) (int, error) {
	enqueued := 0

	for path, regType := range discoveryListingTypes {
		fresh, err := d.isFresh(ctx, path, regType)
		if err != nil {
			d.log.Warn("freshness check failed, discovering anyway", "type", regType, "error", err)
		} else if fresh {
			d.log.Info("skipping fresh regulation type", "type", regType)
			continue
		}

		n, err := d.discoverType(ctx, path, regType)
		if err != nil {
			d.log.Warn("discovery failed for type", "type", regType, "error", err)
			continue
		}
		enqueued += n
	}

	return enqueued, nil
}

func (d *Discoverer) isFresh(ctx context.Context, path, regType string) (bool, error) {
	cacheKey := fmt.Sprintf("discovery:fresh:%s:%s", d.baseURL, regType)
	if d.cache != nil {
		if ok, err := d.cache.Exists(ctx, cacheKey); err == nil && ok {
			return true, nil
		}
	}

	progress, err := d.store.GetDiscoveryProgress(ctx, d.baseURL, regType)
	if err != nil {
		return false, err
	}
	if progress == nil {
		return false, nil
	}

	fresh := progress.IsFresh(d.freshnessHours, time.Now())
	if fresh && d.cache != nil {
		_ = d.cache.Set(ctx, cacheKey, "1", time.Duration(d.freshnessHours)*time.Hour)
	}
	return fresh, nil
}

func (d *Discoverer) discoverType(ctx context.Context, path, regType string) (int, error) {
	enqueued := 0
	page := 1
	totalPages := -1

	for totalPages < 0 || page <= totalPages {
		listURL := fmt.Sprintf("%s/%s?page=%d", d.baseURL, path, page)

		doc, err := d.fetcher.FetchHTML(ctx, listURL)
		if err != nil {
			return enqueued, fmt.Errorf("fetch listing page %d: %w", page, err)
		}

		if totalPages < 0 {
			totalPages = parseTotalPages(doc.Text())
		}

		regs := extractRegulationsFromPage(doc, d.baseURL)
		if len(regs) == 0 {
			break
		}

		for _, r := range regs {
			job := &models.CrawlJob{
				JobType:        models.JobTypeIngest,
				Status:         models.JobStatusPending,
				SourceURL:      r.detailURL,
				PDFURL:         r.pdfURL,
				Slug:           r.slug,
				RegulationType: models.InferRegulationTypeFromSlug(r.slug),
				Title:          r.title,
			}
			if regType, number, year, ok := ParseSlug(r.slug); ok {
				job.Number = number
				if y, err := strconv.Atoi(year); err == nil {
					job.Year = y
				}
				job.FRBRUri = fmt.Sprintf("/akn/id/act/%s/%s/%s", strings.ToLower(regType), year, number)
			}
			if err := d.store.UpsertJob(ctx, job); err != nil {
				d.log.Warn("upsert job failed", "url", r.detailURL, "error", err)
				continue
			}
			enqueued++
		}

		if err := d.store.UpsertDiscoveryProgress(ctx, models.DiscoveryProgress{
			Source: d.baseURL, RegulationType: regType, LastPage: page, TotalCount: totalPages,
		}); err != nil {
			d.log.Warn("upsert discovery progress failed", "error", err)
		}

		page++
		select {
		case <-ctx.Done():
			return enqueued, ctx.Err()
		case <-time.After(delayBetweenPages):
		}
	}

	return enqueued, nil
}

type discoveredRegulation struct {
	slug      string
	title     string
	detailURL string
	pdfURL    string
}

// extractRegulationsFromPage pulls every regulation row off a listing page:
// the slug from its detail anchor, a formal title built from the slug's
// (type, number, year) plus the anchor text, and a PDF-URL-from-slug
// fallback ("{base}/files/{slug}.pdf") used if the detail page resolver
// never finds a "Dokumen" link. Grounded on discover.py's
// _extract_regulations_from_page.
func extractRegulationsFromPage(doc *goquery.Document, baseURL string) []discoveredRegulation {
	var regs []discoveredRegulation
	seen := make(map[string]bool)

	doc.Find("a[href*='/peraturan/']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		slug := slugFromHref(href)
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true

		detailURL := buildFullURL(baseURL, href)
		anchor := strings.TrimSpace(sel.Text())
		title := formalTitleFromSlug(slug, anchor)

		regs = append(regs, discoveredRegulation{
			slug:      slug,
			title:     title,
			detailURL: detailURL,
			pdfURL:    fmt.Sprintf("%s/files/%s.pdf", baseURL, slug),
		})
	})

	return regs
}

func slugFromHref(href string) string {
	href = strings.TrimSuffix(href, "/")
	parts := strings.Split(href, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func buildFullURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return baseURL + "/" + href
}

// formalTitleFromSlug builds the formal "<type name> Nomor <n> Tahun <y>
// tentang <anchor>" title the catalog's type name and the slug's (number,
// year), appending the listing anchor text as the "tentang" subject when one
// was found. Falls back to the anchor text, then the raw slug, when the slug
// itself doesn't parse.
func formalTitleFromSlug(slug, anchor string) string {
	regType, number, year, ok := ParseSlug(slug)
	if !ok {
		if anchor != "" {
			return anchor
		}
		return slug
	}

	name := regType
	if rt, found := models.RegulationTypeByCode(regType); found {
		name = rt.Name
	}

	title := fmt.Sprintf("%s Nomor %s Tahun %s", name, number, year)
	if anchor != "" {
		title += " tentang " + anchor
	}
	return title
}

func parseTotalPages(pageText string) int {
	match := totalCountRe.FindStringSubmatch(pageText)
	if len(match) < 2 {
		return 1
	}
	normalized := strings.ReplaceAll(match[1], ".", "")
	total, err := strconv.Atoi(normalized)
	if err != nil || total <= 0 {
		return 1
	}
	const perPage = 20
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return pages
}

// ParseSlug extracts (type, number, year) from a listing slug using the
// exact-form regex, used by the discoverer and the processor to fill a job's
// or Work's number, year and FRBR URI, and by formalTitleFromSlug to build a
// formal title.
func ParseSlug(slug string) (regType, number, year string, ok bool) {
	m := slugRe.FindStringSubmatch(slug)
	if m == nil {
		return "", "", "", false
	}
	return strings.ToUpper(m[1]), m[2], m[3], true
}
