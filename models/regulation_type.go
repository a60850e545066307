package models

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed regulation_types.yaml
var regulationTypesYAML []byte

// RegulationType is one row of the closed catalog of Indonesian regulation
// kinds (UU, PP, PERPRES, PERMEN, PERDA, ...). The catalog is data, not code:
// a new agency-level type is a regulation_types.yaml edit rather than new Go
// logic, though the YAML is embedded at build time, so the binary is rebuilt.
type RegulationType struct {
	Code          string   `yaml:"code" json:"code"`
	Name          string   `yaml:"name" json:"name"`
	SlugPrefixes  []string `yaml:"slug_prefixes" json:"slug_prefixes"`
	AgencyPattern string   `yaml:"agency_pattern,omitempty" json:"agency_pattern,omitempty"`
}

type regulationTypeCatalog struct {
	mu    sync.Mutex
	types []RegulationType
	byID  map[string]*RegulationType
}

var catalog = &regulationTypeCatalog{}

// load parses the embedded YAML catalog exactly once, lazily on first use
// (never a package-level var initialised at import time). There is no
// refresh: the parsed catalog is kept for the life of the process.
func (c *regulationTypeCatalog) load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.types != nil {
		return nil
	}

	var parsed []RegulationType
	if err := yaml.Unmarshal(regulationTypesYAML, &parsed); err != nil {
		return fmt.Errorf("parse regulation type catalog: %w", err)
	}

	byID := make(map[string]*RegulationType, len(parsed))
	for i := range parsed {
		byID[parsed[i].Code] = &parsed[i]
	}

	c.types = parsed
	c.byID = byID
	return nil
}

// AllRegulationTypes returns the full catalog
func AllRegulationTypes() ([]RegulationType, error) {
	if err := catalog.load(); err != nil {
		return nil, err
	}
	return catalog.types, nil
}

// RegulationTypeByCode looks up a catalog entry by its code (e.g. "UU", "PERMEN")
func RegulationTypeByCode(code string) (*RegulationType, bool) {
	if err := catalog.load(); err != nil {
		return nil, false
	}
	rt, ok := catalog.byID[strings.ToUpper(code)]
	return rt, ok
}

// InferRegulationTypeFromSlug applies the discovery slug-prefix inference
// chain: exact map lookup, then the ordered fallback rules, first match wins.
// Decided per SPEC_FULL.md Open Question #1.
func InferRegulationTypeFromSlug(slug string) string {
	if err := catalog.load(); err != nil {
		return "PERMEN"
	}
	lower := strings.ToLower(slug)

	for _, rt := range catalog.types {
		for _, prefix := range rt.SlugPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return rt.Code
			}
		}
	}

	switch {
	case strings.Contains(lower, "tap") && strings.Contains(lower, "mpr"):
		return "TAP_MPR"
	case strings.HasPrefix(lower, "permen") || strings.HasPrefix(lower, "kepmen"):
		return "PERMEN"
	case strings.HasPrefix(lower, "perda") || strings.HasPrefix(lower, "perwako") ||
		strings.HasPrefix(lower, "perbup") || strings.HasPrefix(lower, "pergub") ||
		strings.HasPrefix(lower, "qanun"):
		return "PERDA"
	case strings.Contains(lower, "perban"):
		return "PERBAN"
	default:
		return "PERMEN"
	}
}
