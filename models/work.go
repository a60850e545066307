package models

import "time"

// WorkStatus is the lifecycle state of a Work's content pipeline
type WorkStatus string

const (
	WorkStatusDiscovered WorkStatus = "discovered"
	WorkStatusLoaded     WorkStatus = "loaded"
	WorkStatusNeedsOCR   WorkStatus = "needs_ocr"
	WorkStatusFailed     WorkStatus = "failed"
)

// Work is one Indonesian legal regulation (a "karya", FRBR Work-level entity).
type Work struct {
	ID               string     `json:"id" validate:"required"`
	FRBRUri          string     `json:"frbr_uri" validate:"required"`
	RegulationType   string     `json:"regulation_type" validate:"required"`
	Number           string     `json:"number"`
	Year             int        `json:"year"`
	Title            string     `json:"title" validate:"required"`
	SourceURL        string     `json:"source_url"`
	PDFURL           string     `json:"pdf_url"`
	PDFHash          string     `json:"pdf_hash,omitempty"`
	Status           WorkStatus `json:"status" validate:"required,oneof:discovered|loaded|needs_ocr|failed"`
	ExtractionVer    int        `json:"extraction_version"`
	PDFQuality       string     `json:"pdf_quality,omitempty"`
	Pemrakarsa       string     `json:"pemrakarsa,omitempty"`
	TempatPenetapan  string     `json:"tempat_penetapan,omitempty"`
	TanggalPenetapan *time.Time `json:"tanggal_penetapan,omitempty"`
	TanggalDiundang  *time.Time `json:"tanggal_diundangkan,omitempty"`

	// LegalStatus is the regulation's own in-force state (in_force, amended,
	// revoked, not_in_force), distinct from Status above which tracks this
	// pipeline's load progress for the row.
	LegalStatus         string `json:"legal_status,omitempty"`
	PejabatPenetap      string `json:"pejabat_penetap,omitempty"`
	NomorPengundangan   string `json:"nomor_pengundangan,omitempty"`
	NomorTambahan       string `json:"nomor_tambahan,omitempty"`
	PejabatPengundangan string `json:"pejabat_pengundangan,omitempty"`
	Tentang             string `json:"tentang,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
