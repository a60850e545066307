package regulations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bantuaku/peraturan-ingest/errors"
	"github.com/bantuaku/peraturan-ingest/logger"
	"github.com/bantuaku/peraturan-ingest/models"
	"github.com/bantuaku/peraturan-ingest/retry"
	"github.com/bantuaku/peraturan-ingest/validation"
)

// StuckJobTimeout is how long a job may sit in "crawling" before ClaimJobs
// reclaims it as abandoned (worker crashed mid-job). Matches SPEC_FULL.md §4.1.
const StuckJobTimeout = 15 * time.Minute

// Store owns every SQL round trip the pipeline makes. Every method retries
// transient failures per the retry schedule and wraps the final error in
// errors.ErrCodeTransientStore, grounded on the backend teacher's own
// pgxpool-direct Store (store.go) and the _retry helper in the original
// crawler's state.py.
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewStore creates a Store bound to pool.
func NewStore(pool *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{pool: pool, log: log}
}

func (s *Store) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := retry.Do(ctx, s.log, op, fn); err != nil {
		return errors.NewTransientStoreError(op, err)
	}
	return nil
}

// UpsertJob inserts a CrawlJob or, if one already exists for the same
// source URL, leaves its status untouched (discovery must never resurrect a
// job that is already done or in flight).
func (s *Store) UpsertJob(ctx context.Context, job *models.CrawlJob) error {
	if result := validation.ValidateStruct(job); !result.Valid {
		return errors.NewValidationError("invalid crawl job", fmt.Sprintf("%v", result.Errors))
	}

	return s.withRetry(ctx, "upsert_job", func(ctx context.Context) error {
		if job.ID == "" {
			job.ID = uuid.New().String()
		}
		_, err := s.pool.Exec(ctx, `
			INSERT INTO crawl_jobs
				(id, job_type, status, source_url, pdf_url, slug, regulation_type,
				 number, year, frbr_uri, title, attempt_count, created_at, updated_at)
			VALUES ($1, $2, 'pending', $3, $4, $5, $6, $7, $8, $9, $10, 0, NOW(), NOW())
			ON CONFLICT (source_url) DO NOTHING
		`, job.ID, job.JobType, job.SourceURL, job.PDFURL, job.Slug, job.RegulationType,
			job.Number, nullIfZero(job.Year), job.FRBRUri, job.Title)
		return err
	})
}

// ClaimJobs is the single correctness-critical primitive of the pipeline.
// In one round trip it reclaims any job stuck in "crawling" for longer than
// StuckJobTimeout and claims up to limit "pending" rows, all under
// FOR UPDATE SKIP LOCKED so two concurrent worker processes never receive
// overlapping rows.
func (s *Store) ClaimJobs(ctx context.Context, limit int) ([]models.CrawlJob, error) {
	var jobs []models.CrawlJob

	err := s.withRetry(ctx, "claim_jobs", func(ctx context.Context) error {
		jobs = nil
		rows, err := s.pool.Query(ctx, `
			WITH recovered AS (
				UPDATE crawl_jobs
				SET status = 'pending'
				WHERE status = 'crawling' AND claimed_at < NOW() - $2::interval
			),
			claimable AS (
				SELECT id FROM crawl_jobs
				WHERE status = 'pending'
				ORDER BY created_at
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			UPDATE crawl_jobs
			SET status = 'crawling', claimed_at = NOW(), attempt_count = attempt_count + 1, updated_at = NOW()
			WHERE id IN (SELECT id FROM claimable)
			RETURNING id, job_type, status, source_url, pdf_url, slug, regulation_type,
				number, year, frbr_uri, title,
				attempt_count, error_message, claimed_at, created_at, updated_at
		`, limit, StuckJobTimeout.String())
		if err != nil {
			return fmt.Errorf("claim jobs: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var j models.CrawlJob
			var errMsg, pdfURL, number, frbrURI, title *string
			var year *int
			if err := rows.Scan(&j.ID, &j.JobType, &j.Status, &j.SourceURL, &pdfURL, &j.Slug,
				&j.RegulationType, &number, &year, &frbrURI, &title,
				&j.AttemptCount, &errMsg, &j.ClaimedAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
				return fmt.Errorf("scan claimed job: %w", err)
			}
			if errMsg != nil {
				j.ErrorMessage = *errMsg
			}
			if pdfURL != nil {
				j.PDFURL = *pdfURL
			}
			if number != nil {
				j.Number = *number
			}
			if year != nil {
				j.Year = *year
			}
			if frbrURI != nil {
				j.FRBRUri = *frbrURI
			}
			if title != nil {
				j.Title = *title
			}
			jobs = append(jobs, j)
		}
		return rows.Err()
	})
	return jobs, err
}

// UpdateJobStatus marks a claimed job done or failed, with an optional
// error message (truncated to 1000 characters per SPEC_FULL.md §7).
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) error {
	if len(errMsg) > 1000 {
		errMsg = errMsg[:1000]
	}
	return s.withRetry(ctx, "update_job_status", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			UPDATE crawl_jobs SET status = $1, error_message = NULLIF($2, ''), updated_at = NOW()
			WHERE id = $3
		`, status, errMsg, jobID)
		return err
	})
}

// UpdateJobPDFURL persists the candidate URL that actually served the PDF
// payload as the job's stored pdf_url, so a retried job has it as its
// stored_url candidate; the freshly resolved URL is still tried first.
func (s *Store) UpdateJobPDFURL(ctx context.Context, jobID, pdfURL string) error {
	return s.withRetry(ctx, "update_job_pdf_url", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			UPDATE crawl_jobs SET pdf_url = $1, updated_at = NOW() WHERE id = $2
		`, pdfURL, jobID)
		return err
	})
}

// RetryFailedJobs resets failed jobs back to pending, optionally filtered to
// those whose error_message contains errorLike (case-insensitive substring,
// matching the original worker's --error-like flag semantics).
func (s *Store) RetryFailedJobs(ctx context.Context, errorLike string) (int64, error) {
	var affected int64
	err := s.withRetry(ctx, "retry_failed_jobs", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE crawl_jobs
			SET status = 'pending', error_message = NULL, updated_at = NOW()
			WHERE status = 'failed' AND ($1 = '' OR error_message ILIKE '%' || $1 || '%')
		`, errorLike)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

// RequeueStaleExtractions resets crawl_jobs back to pending for every done
// job whose matching work is below currentVersion's extraction version (or,
// when force is set, every done job regardless of version). Grounded on
// process.py::reprocess_jobs's version-sweep behaviour.
func (s *Store) RequeueStaleExtractions(ctx context.Context, currentVersion int, force bool) (int64, error) {
	var affected int64
	err := s.withRetry(ctx, "requeue_stale_extractions", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE crawl_jobs
			SET status = 'pending', error_message = NULL, updated_at = NOW()
			WHERE status = 'done'
			AND source_url IN (
				SELECT source_url FROM works w
				WHERE w.source_url = crawl_jobs.source_url
				AND ($2 OR w.extraction_version < $1)
			)
		`, currentVersion, force)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

// UpsertWork inserts or updates a Work keyed on its FRBR URI, the stable
// canonical identifier that survives re-discovery and re-processing.
func (s *Store) UpsertWork(ctx context.Context, work *models.Work) (string, error) {
	if work.ID == "" {
		work.ID = uuid.New().String()
	}
	if result := validation.ValidateStruct(work); !result.Valid {
		return "", errors.NewValidationError("invalid work", fmt.Sprintf("%v", result.Errors))
	}

	err := s.withRetry(ctx, "upsert_work", func(ctx context.Context) error {
		return s.pool.QueryRow(ctx, `
			INSERT INTO works
				(id, frbr_uri, regulation_type, number, year, title, source_url, pdf_url, pdf_hash,
				 status, extraction_version, pdf_quality, pemrakarsa, tempat_penetapan,
				 tanggal_penetapan, tanggal_diundangkan, legal_status, pejabat_penetap,
				 nomor_pengundangan, nomor_tambahan, pejabat_pengundangan, tentang,
				 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
				$17, $18, $19, $20, $21, $22, NOW(), NOW())
			ON CONFLICT (frbr_uri) DO UPDATE SET
				regulation_type = EXCLUDED.regulation_type,
				number = EXCLUDED.number,
				year = EXCLUDED.year,
				title = EXCLUDED.title,
				source_url = EXCLUDED.source_url,
				pdf_url = EXCLUDED.pdf_url,
				pdf_hash = EXCLUDED.pdf_hash,
				status = EXCLUDED.status,
				extraction_version = EXCLUDED.extraction_version,
				pdf_quality = EXCLUDED.pdf_quality,
				pemrakarsa = EXCLUDED.pemrakarsa,
				tempat_penetapan = EXCLUDED.tempat_penetapan,
				tanggal_penetapan = EXCLUDED.tanggal_penetapan,
				tanggal_diundangkan = EXCLUDED.tanggal_diundangkan,
				legal_status = EXCLUDED.legal_status,
				pejabat_penetap = EXCLUDED.pejabat_penetap,
				nomor_pengundangan = EXCLUDED.nomor_pengundangan,
				nomor_tambahan = EXCLUDED.nomor_tambahan,
				pejabat_pengundangan = EXCLUDED.pejabat_pengundangan,
				tentang = EXCLUDED.tentang,
				updated_at = NOW()
			RETURNING id
		`, work.ID, work.FRBRUri, work.RegulationType, work.Number, work.Year, work.Title,
			work.SourceURL, work.PDFURL, work.PDFHash, work.Status, work.ExtractionVer,
			work.PDFQuality, work.Pemrakarsa, work.TempatPenetapan, work.TanggalPenetapan,
			work.TanggalDiundang, work.LegalStatus, work.PejabatPenetap, work.NomorPengundangan,
			work.NomorTambahan, work.PejabatPengundangan, work.Tentang,
		).Scan(&work.ID)
	})
	return work.ID, err
}

// GetWorkByHash finds a previously loaded Work by its PDF content hash, used
// by the Processor to skip re-extracting a PDF it has already processed.
func (s *Store) GetWorkByHash(ctx context.Context, hash string) (*models.Work, error) {
	var w models.Work
	found := true
	err := s.withRetry(ctx, "get_work_by_hash", func(ctx context.Context) error {
		err := s.pool.QueryRow(ctx, `
			SELECT id, frbr_uri, regulation_type, number, year, title, source_url, pdf_url,
				pdf_hash, status, extraction_version, pdf_quality, created_at, updated_at
			FROM works WHERE pdf_hash = $1
		`, hash).Scan(&w.ID, &w.FRBRUri, &w.RegulationType, &w.Number, &w.Year, &w.Title,
			&w.SourceURL, &w.PDFURL, &w.PDFHash, &w.Status, &w.ExtractionVer, &w.PDFQuality,
			&w.CreatedAt, &w.UpdatedAt)
		if isNoRows(err) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &w, nil
}

// ReplaceWorkSubtree deletes and rebuilds the entire DocumentNode tree (and
// everything that hangs off it) for a Work. Deletion respects the foreign
// key dependency order of load_to_supabase.py::cleanup_work_data:
// suggestions, then revisions, then
// legal_chunks, then document_nodes. Nodes are re-inserted breadth-first by
// depth so a child never references a parent row that doesn't exist yet.
func (s *Store) ReplaceWorkSubtree(ctx context.Context, workID string, nodes []models.DocumentNode) error {
	return s.withRetry(ctx, "replace_work_subtree", func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		for _, stmt := range []string{
			`DELETE FROM suggestions WHERE work_id = $1`,
			`DELETE FROM revisions WHERE work_id = $1`,
			`DELETE FROM legal_chunks WHERE work_id = $1`,
			`DELETE FROM document_nodes WHERE work_id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, workID); err != nil {
				return fmt.Errorf("cleanup work data: %w", err)
			}
		}

		byDepth := make(map[int][]models.DocumentNode)
		maxDepth := 0
		for _, n := range nodes {
			byDepth[n.Depth] = append(byDepth[n.Depth], n)
			if n.Depth > maxDepth {
				maxDepth = n.Depth
			}
		}

		for depth := 0; depth <= maxDepth; depth++ {
			for _, n := range byDepth[depth] {
				if n.ID == "" {
					n.ID = uuid.New().String()
				}
				if _, err := tx.Exec(ctx, `
					INSERT INTO document_nodes
						(id, work_id, parent_id, node_type, number, heading, content, path, depth, sort_order)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				`, n.ID, workID, n.ParentID, n.Kind, n.Number, n.Heading, n.Content, n.Path, n.Depth, n.SortOrder); err != nil {
					return fmt.Errorf("insert document node: %w", err)
				}
			}
		}

		return tx.Commit(ctx)
	})
}

// ReplaceWorkChunks deletes and reinserts the full LegalChunk set for a Work
// as a single unit, never patched incrementally.
func (s *Store) ReplaceWorkChunks(ctx context.Context, workID string, chunks []models.LegalChunk) error {
	return s.withRetry(ctx, "replace_work_chunks", func(ctx context.Context) error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM legal_chunks WHERE work_id = $1`, workID); err != nil {
			return fmt.Errorf("delete legal chunks: %w", err)
		}

		for _, c := range chunks {
			if c.ID == "" {
				c.ID = uuid.New().String()
			}
			metadata := c.Metadata
			if metadata == nil {
				metadata = map[string]interface{}{}
			}
			metadataJSON, err := json.Marshal(metadata)
			if err != nil {
				return fmt.Errorf("marshal chunk metadata: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO legal_chunks (id, work_id, node_id, chunk_index, heading, text, metadata)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, c.ID, workID, c.NodeID, c.ChunkIndex, c.Heading, c.Text, metadataJSON); err != nil {
				return fmt.Errorf("insert legal chunk: %w", err)
			}
		}

		return tx.Commit(ctx)
	})
}

// GetDiscoveryProgress fetches the pagination cursor for (source, regulationType).
func (s *Store) GetDiscoveryProgress(ctx context.Context, source, regulationType string) (*models.DiscoveryProgress, error) {
	var p models.DiscoveryProgress
	found := true
	err := s.withRetry(ctx, "get_discovery_progress", func(ctx context.Context) error {
		err := s.pool.QueryRow(ctx, `
			SELECT source, regulation_type, last_page, total_count, last_crawled_at
			FROM discovery_progress WHERE source = $1 AND regulation_type = $2
		`, source, regulationType).Scan(&p.Source, &p.RegulationType, &p.LastPage, &p.TotalCount, &p.LastCrawledAt)
		if isNoRows(err) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// UpsertDiscoveryProgress records the cursor after a discovery pass.
func (s *Store) UpsertDiscoveryProgress(ctx context.Context, p models.DiscoveryProgress) error {
	return s.withRetry(ctx, "upsert_discovery_progress", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO discovery_progress (source, regulation_type, last_page, total_count, last_crawled_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (source, regulation_type) DO UPDATE SET
				last_page = EXCLUDED.last_page,
				total_count = EXCLUDED.total_count,
				last_crawled_at = NOW()
		`, p.Source, p.RegulationType, p.LastPage, p.TotalCount)
		return err
	})
}

// CreateRun records the start of a Worker Supervisor invocation.
func (s *Store) CreateRun(ctx context.Context, mode models.RunMode) (*models.ScraperRun, error) {
	run := &models.ScraperRun{
		ID:        uuid.New().String(),
		Mode:      mode,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
	}
	err := s.withRetry(ctx, "create_run", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO scraper_runs (id, mode, status, started_at)
			VALUES ($1, $2, $3, $4)
		`, run.ID, run.Mode, run.Status, run.StartedAt)
		return err
	})
	return run, err
}

// FinalizeRun records the end-state counters of a Worker Supervisor invocation.
func (s *Store) FinalizeRun(ctx context.Context, run *models.ScraperRun) error {
	now := time.Now()
	run.FinishedAt = &now
	return s.withRetry(ctx, "finalize_run", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			UPDATE scraper_runs
			SET status = $1, jobs_discovered = $2, jobs_processed = $3, jobs_succeeded = $4,
				jobs_failed = $5, error_message = NULLIF($6, ''), finished_at = $7
			WHERE id = $8
		`, run.Status, run.JobsDiscovered, run.JobsProcessed, run.JobsSucceeded,
			run.JobsFailed, run.ErrorMessage, run.FinishedAt, run.ID)
		return err
	})
}

// Stats summarises job counts by status and the most recent run, for the
// `worker stats` subcommand.
type Stats struct {
	JobCounts map[models.JobStatus]int
	LatestRun *models.ScraperRun
}

// GetStats queries job-status counts and the latest run record.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{JobCounts: make(map[models.JobStatus]int)}

	err := s.withRetry(ctx, "get_stats", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM crawl_jobs GROUP BY status`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var status models.JobStatus
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			stats.JobCounts[status] = count
		}
		if err := rows.Err(); err != nil {
			return err
		}

		var run models.ScraperRun
		err = s.pool.QueryRow(ctx, `
			SELECT id, mode, status, jobs_discovered, jobs_processed, jobs_succeeded,
				jobs_failed, started_at, finished_at
			FROM scraper_runs ORDER BY started_at DESC LIMIT 1
		`).Scan(&run.ID, &run.Mode, &run.Status, &run.JobsDiscovered, &run.JobsProcessed,
			&run.JobsSucceeded, &run.JobsFailed, &run.StartedAt, &run.FinishedAt)
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return err
		}
		stats.LatestRun = &run
		return nil
	})

	return stats, err
}

func isNoRows(err error) bool {
	return err == pgx.ErrNoRows
}

// nullIfZero maps an unset int (e.g. a job whose slug failed to parse, so
// Year was never populated) to SQL NULL instead of persisting a misleading 0.
func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
