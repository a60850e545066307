package regulations

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestParseIndonesianDate_NamedMonth(t *testing.T) {
	got := parseIndonesianDate("13 Juli 2003")
	if got == nil {
		t.Fatal("expected a parsed date")
	}
	want := time.Date(2003, time.July, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseIndonesianDate_NumericFallback(t *testing.T) {
	got := parseIndonesianDate("2003-07-13")
	if got == nil {
		t.Fatal("expected a parsed date")
	}
	want := time.Date(2003, time.July, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseIndonesianDate_Unparseable(t *testing.T) {
	if got := parseIndonesianDate("not a date"); got != nil {
		t.Errorf("expected nil for an unparseable date, got %v", got)
	}
}

func TestExtractMetadata_ReadsLabeledRows(t *testing.T) {
	html := `
	<table>
		<tr><td>Pemrakarsa</td><td>Kementerian Ketenagakerjaan</td></tr>
		<tr><td>Tempat Penetapan</td><td>Jakarta</td></tr>
		<tr><td>Tanggal Penetapan</td><td>25 Maret 2003</td></tr>
		<tr><td>Tanggal Diundangkan</td><td>25 Maret 2003</td></tr>
	</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture html: %v", err)
	}

	detail := &ResolvedDetail{}
	extractMetadata(doc, detail)

	if detail.Pemrakarsa != "Kementerian Ketenagakerjaan" {
		t.Errorf("got pemrakarsa %q", detail.Pemrakarsa)
	}
	if detail.TempatPenetapan != "Jakarta" {
		t.Errorf("got tempat penetapan %q", detail.TempatPenetapan)
	}
	if detail.TanggalPenetapan == nil {
		t.Error("expected tanggal penetapan to be parsed")
	}
	if detail.TanggalDiundang == nil {
		t.Error("expected tanggal diundangkan to be parsed")
	}
}

func TestExtractMetadata_ReadsStatusAndPengundanganFields(t *testing.T) {
	html := `
	<table>
		<tr><td>Status</td><td>Dicabut sebagian</td></tr>
		<tr><td>Pejabat Penetap</td><td>Presiden Republik Indonesia</td></tr>
		<tr><td>Pejabat Pengundangan</td><td>Menteri Sekretaris Negara</td></tr>
		<tr><td>Nomor Pengundangan</td><td>39</td></tr>
		<tr><td>Nomor Tambahan</td><td>4279</td></tr>
		<tr><td>Tentang</td><td>Ketenagakerjaan</td></tr>
	</table>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture html: %v", err)
	}

	detail := &ResolvedDetail{}
	extractMetadata(doc, detail)

	if detail.Status != "revoked" {
		t.Errorf("got status %q, want revoked", detail.Status)
	}
	if detail.PejabatPenetap != "Presiden Republik Indonesia" {
		t.Errorf("got pejabat penetap %q", detail.PejabatPenetap)
	}
	if detail.PejabatPengundangan != "Menteri Sekretaris Negara" {
		t.Errorf("got pejabat pengundangan %q", detail.PejabatPengundangan)
	}
	if detail.NomorPengundangan != "39" {
		t.Errorf("got nomor pengundangan %q", detail.NomorPengundangan)
	}
	if detail.NomorTambahan != "4279" {
		t.Errorf("got nomor tambahan %q", detail.NomorTambahan)
	}
	if detail.Tentang != "Ketenagakerjaan" {
		t.Errorf("got tentang %q", detail.Tentang)
	}
}

func TestNormalizeLegalStatus_MapsKnownLabels(t *testing.T) {
	cases := map[string]string{
		"Berlaku":         "in_force",
		"Diubah":          "amended",
		"Dicabut":         "revoked",
		"Tidak Berlaku":   "not_in_force",
		"something novel": "in_force",
	}
	for label, want := range cases {
		if got := normalizeLegalStatus(label); got != want {
			t.Errorf("normalizeLegalStatus(%q) = %q, want %q", label, got, want)
		}
	}
}
