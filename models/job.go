package models

import "time"

// JobStatus is the CrawlJob lifecycle state the claim primitive transitions
// between. "crawling" is never a terminal state: claim_jobs reclaims any row
// stuck in it for longer than the stuck-job timeout.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusCrawling JobStatus = "crawling"
	JobStatusDone     JobStatus = "done"
	JobStatusFailed   JobStatus = "failed"
)

// JobType distinguishes a discovery-produced ingestion job from other
// queue entries the worker may schedule.
type JobType string

const (
	JobTypeIngest JobType = "ingest"
)

// CrawlJob is one unit of work in the shared lease-based queue. A worker
// process claims a batch atomically via Store.ClaimJobs, processes each row
// sequentially on its single control goroutine, and reports status back.
//
// Type, Number, Year, FRBRUri, and Title are parsed from the listing slug at
// discovery time so a job carries the same identity the Processor will later
// derive from the PDF itself — this lets the discoverer's upsert and S1's
// assertions about the queued job agree without re-parsing the slug twice.
type CrawlJob struct {
	ID             string    `json:"id"`
	JobType        JobType   `json:"job_type" validate:"required"`
	Status         JobStatus `json:"status" validate:"required,oneof:pending|crawling|done|failed"`
	SourceURL      string    `json:"source_url" validate:"required"`
	PDFURL         string    `json:"pdf_url,omitempty"`
	Slug           string    `json:"slug"`
	RegulationType string    `json:"regulation_type"`
	Number         string    `json:"number,omitempty"`
	Year           int       `json:"year,omitempty"`
	FRBRUri        string    `json:"frbr_uri,omitempty"`
	Title          string    `json:"title,omitempty"`
	AttemptCount   int       `json:"attempt_count"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
