package regulations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bantuaku/peraturan-ingest/errors"
	"github.com/bantuaku/peraturan-ingest/logger"
	"github.com/bantuaku/peraturan-ingest/models"
	"github.com/bantuaku/peraturan-ingest/services/storage"
)

// ExtractionVersion is bumped whenever the extraction/parsing pipeline
// changes in a way that should cause previously-loaded works to be
// reprocessed. Compared against Work.ExtractionVer by `worker reprocess`.
const ExtractionVersion = 1

const delayBetweenRequests = 500 * time.Millisecond

// minPDFBytes and minExtractedTextChars are the failure thresholds a
// downloaded/extracted payload must clear before the pipeline trusts it
// rather than aborting the job as failed.
const (
	minPDFBytes           = 1000
	minExtractedTextChars = 100
)

// Processor runs one CrawlJob through the full pipeline: resolve the detail
// page, download the PDF, fingerprint it, extract text, classify quality,
// correct OCR errors, parse structure, and load the result. Grounded on the
// teacher's ContentProcessor.ProcessRegulation control flow and the original
// worker's process.py::_extract_and_load step ordering.
type Processor struct {
	fetcher  *Fetcher
	resolver *Resolver
	store    *Store
	blobs    *storage.S3
	baseURL  string
	log      *logger.Logger
	metrics  *Metrics
}

// NewProcessor builds a Processor.
func NewProcessor(fetcher *Fetcher, resolver *Resolver, store *Store, blobs *storage.S3, baseURL string, log *logger.Logger, metrics *Metrics) *Processor {
	return &Processor{
		fetcher:  fetcher,
		resolver: resolver,
		store:    store,
		blobs:    blobs,
		baseURL:  baseURL,
		log:      log,
		metrics:  metrics,
	}
}

// ProcessJob runs one claimed job end to end, marking it done or failed in
// the Store. It never returns an error for a job-level failure: the failure
// is recorded against the job itself so the batch loop continues.
func (p *Processor) ProcessJob(ctx context.Context, job models.CrawlJob) {
	if p.metrics != nil {
		p.metrics.JobsClaimed.Inc()
	}
	if err := p.process(ctx, job); err != nil {
		p.log.Warn("job failed", "job_id", job.ID, "url", job.SourceURL, "error", err)
		if markErr := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed, err.Error()); markErr != nil {
			p.log.Error("failed to mark job failed", "job_id", job.ID, "error", markErr)
		}
		if p.metrics != nil {
			p.metrics.JobsFailed.Inc()
		}
		return
	}

	if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusDone, ""); err != nil {
		p.log.Error("failed to mark job done", "job_id", job.ID, "error", err)
	}
	if p.metrics != nil {
		p.metrics.JobsSucceeded.Inc()
	}
}

func (p *Processor) process(ctx context.Context, job models.CrawlJob) error {
	slugFallbackPDF := fmt.Sprintf("%s/files/%s.pdf", p.baseURL, job.Slug)

	detail, err := p.resolver.Resolve(ctx, job.SourceURL, slugFallbackPDF)
	if err != nil {
		return errors.NewResolutionError(job.SourceURL, err)
	}

	time.Sleep(delayBetweenRequests)

	data, usedURL, err := p.downloadPDF(ctx, dedupeNonEmpty(detail.PDFURL, job.PDFURL))
	if err != nil {
		return errors.NewDownloadError(detail.PDFURL, err)
	}
	if usedURL != detail.PDFURL {
		if err := p.store.UpdateJobPDFURL(ctx, job.ID, usedURL); err != nil {
			p.log.Warn("failed to persist resolved pdf url", "job_id", job.ID, "error", err)
		}
	}

	hash := sha256Hex(data)

	if existing, err := p.store.GetWorkByHash(ctx, hash); err == nil && existing != nil && existing.ExtractionVer == ExtractionVersion {
		p.log.Info("pdf already processed at current extraction version, skipping", "hash", hash, "work_id", existing.ID)
		return nil
	}

	extracted, err := ExtractPDF(data)
	if err != nil {
		return errors.NewExtractionError(err)
	}

	if extracted.Quality == PDFQualityImageOnly {
		return p.loadNeedsOCR(ctx, job, detail, hash, extracted)
	}

	if len(strings.TrimSpace(extracted.Text)) < minExtractedTextChars {
		return errors.NewExtractionError(fmt.Errorf("extracted text too short (%d chars)", len(strings.TrimSpace(extracted.Text))))
	}

	correctedText := CorrectOCRErrors(extracted.Text)
	parseStart := time.Now()
	nodes := ParseStructure(correctedText)
	if p.metrics != nil {
		p.metrics.ParseDuration.Observe(time.Since(parseStart).Seconds())
	}
	if CountPasals(nodes) == 0 {
		p.log.Warn("structure parse produced no pasal nodes", "url", job.SourceURL)
	}

	regType := job.RegulationType
	if regType == "" {
		regType = models.InferRegulationTypeFromSlug(job.Slug)
	}
	parsedType, number, year, ok := ParseSlug(job.Slug)
	if ok {
		regType = parsedType
	}

	title := detail.Title
	if title == "" {
		title = job.Title
	}
	if title == "" {
		title = formalTitleFromSlug(job.Slug, "")
	}

	frbrURI := fmt.Sprintf("/akn/id/act/%s/%s/%s", strings.ToLower(regType), year, number)

	work := &models.Work{
		FRBRUri:             frbrURI,
		RegulationType:      regType,
		Number:              number,
		Year:                atoiSafe(year),
		Title:               title,
		SourceURL:           job.SourceURL,
		PDFURL:              detail.PDFURL,
		PDFHash:             hash,
		Status:              models.WorkStatusLoaded,
		ExtractionVer:       ExtractionVersion,
		PDFQuality:          string(extracted.Quality),
		Pemrakarsa:          detail.Pemrakarsa,
		TempatPenetapan:     detail.TempatPenetapan,
		TanggalPenetapan:    detail.TanggalPenetapan,
		TanggalDiundang:     detail.TanggalDiundang,
		LegalStatus:         detail.Status,
		PejabatPenetap:      detail.PejabatPenetap,
		NomorPengundangan:   detail.NomorPengundangan,
		NomorTambahan:       detail.NomorTambahan,
		PejabatPengundangan: detail.PejabatPengundangan,
		Tentang:             detail.Tentang,
	}

	workID, err := p.store.UpsertWork(ctx, work)
	if err != nil {
		return errors.NewLoadError(frbrURI, err)
	}

	for i := range nodes {
		nodes[i].WorkID = workID
	}
	if err := p.store.ReplaceWorkSubtree(ctx, workID, nodes); err != nil {
		return errors.NewLoadError(frbrURI, err)
	}

	chunks := BuildChunks(title, nodes)
	for i := range chunks {
		chunks[i].WorkID = workID
	}
	if err := p.store.ReplaceWorkChunks(ctx, workID, chunks); err != nil {
		return errors.NewLoadError(frbrURI, err)
	}

	if p.blobs != nil {
		blobKey := job.Slug + ".pdf"
		if err := p.blobs.Upload(ctx, blobKey, data); err != nil {
			// best-effort: the pipeline already succeeded without the blob copy
			p.log.Warn("pdf blob upload failed", "key", blobKey, "error", err)
		}
	}

	if p.metrics != nil {
		p.metrics.PasalsParsed.Add(float64(CountPasals(nodes)))
	}

	return nil
}

func (p *Processor) loadNeedsOCR(ctx context.Context, job models.CrawlJob, detail *ResolvedDetail, hash string, extracted *ExtractedPDF) error {
	regType := models.InferRegulationTypeFromSlug(job.Slug)
	parsedType, number, year, ok := ParseSlug(job.Slug)
	if ok {
		regType = parsedType
	}
	title := detail.Title
	if title == "" {
		title = job.Title
	}
	if title == "" {
		title = formalTitleFromSlug(job.Slug, "")
	}
	frbrURI := fmt.Sprintf("/akn/id/act/%s/%s/%s", strings.ToLower(regType), year, number)

	work := &models.Work{
		FRBRUri:        frbrURI,
		RegulationType: regType,
		Number:         number,
		Year:           atoiSafe(year),
		Title:          title,
		SourceURL:      job.SourceURL,
		PDFURL:         detail.PDFURL,
		PDFHash:        hash,
		Status:         models.WorkStatusNeedsOCR,
		ExtractionVer:  ExtractionVersion,
		PDFQuality:     string(extracted.Quality),
	}
	if _, err := p.store.UpsertWork(ctx, work); err != nil {
		return errors.NewLoadError(frbrURI, err)
	}
	return nil
}

// downloadPDF tries each candidate URL in order, returning the first payload
// that passes validation (status 200, an acceptable content-type, at least
// minPDFBytes, and not %PDF- junk). candidates is the deduped
// [resolved_url, stored_url] list; the URL that actually served the payload
// is returned so the caller can persist it back onto the job.
func (p *Processor) downloadPDF(ctx context.Context, candidates []string) ([]byte, string, error) {
	var lastErr error
	for _, candidate := range candidates {
		body, status, contentType, err := p.fetcher.FetchBytes(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		if status != 200 {
			lastErr = fmt.Errorf("status %d for %s", status, candidate)
			continue
		}
		if len(body) < minPDFBytes {
			lastErr = fmt.Errorf("payload too small (%d bytes) for %s", len(body), candidate)
			continue
		}
		if !isAcceptablePDFContentType(contentType) {
			lastErr = fmt.Errorf("unexpected content-type %q for %s", contentType, candidate)
			continue
		}
		if LooksLikeJunkPDF(body) {
			lastErr = fmt.Errorf("junk pdf content from %s", candidate)
			continue
		}
		return body, candidate, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no pdf candidates to download")
	}
	return nil, "", lastErr
}

func isAcceptablePDFContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.Contains(ct, "pdf") || strings.Contains(ct, "octet-stream")
}

// dedupeNonEmpty preserves order while dropping empty and repeated entries,
// used to build the [resolved_url, stored_url] download candidate list.
func dedupeNonEmpty(urls ...string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func atoiSafe(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}
