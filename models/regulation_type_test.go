package models

import "testing"

func TestInferRegulationTypeFromSlug_CatalogPrefixWins(t *testing.T) {
	cases := map[string]string{
		"uu-no-13-tahun-2003":      "UU",
		"pp-no-5-tahun-2021":       "PP",
		"perpres-no-1-tahun-2020":  "PERPRES",
		"permen-keu-no-1-tahun-19": "PERMEN",
		"perda-no-2-tahun-2018":    "PERDA",
	}

	for slug, want := range cases {
		if got := InferRegulationTypeFromSlug(slug); got != want {
			t.Errorf("InferRegulationTypeFromSlug(%q) = %q, want %q", slug, got, want)
		}
	}
}

func TestInferRegulationTypeFromSlug_FallsBackWhenNoCatalogPrefixMatches(t *testing.T) {
	// "lampiran-tap-mpr-1998" does not start with any catalog slug_prefix,
	// so it falls through to the ordered fallback chain's tap+mpr rule.
	got := InferRegulationTypeFromSlug("lampiran-tap-mpr-1998")
	if got != "TAP_MPR" {
		t.Errorf("got %q, want TAP_MPR", got)
	}
}

func TestInferRegulationTypeFromSlug_DefaultsToPermen(t *testing.T) {
	got := InferRegulationTypeFromSlug("totally-unrecognized-slug-form")
	if got != "PERMEN" {
		t.Errorf("got %q, want PERMEN default", got)
	}
}

func TestRegulationTypeByCode_CaseInsensitive(t *testing.T) {
	rt, ok := RegulationTypeByCode("uu")
	if !ok {
		t.Fatal("expected lookup of lowercase code to succeed")
	}
	if rt.Code != "UU" {
		t.Errorf("got %q, want UU", rt.Code)
	}
}

func TestAllRegulationTypes_LoadsCatalog(t *testing.T) {
	types, err := AllRegulationTypes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) == 0 {
		t.Error("expected a non-empty regulation type catalog")
	}
}
