package regulations

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/bantuaku/peraturan-ingest/models"
)

// Marker regexes, transliterated one-for-one from the original pipeline's
// parse_structure.py. Kept as package-level data so a new heading style is
// one more regex, not a new branch of parsing logic.
var (
	babRe      = regexp.MustCompile(`(?m)^\s*BAB\s+([IVXLCDM]+)\s*$`)
	bagianRe   = regexp.MustCompile(`(?mi)^\s*Bagian\s+(Kesatu|Pertama|Kedua|Ketiga|Keempat|Kelima|Keenam|Ketujuh|Kedelapan|Kesembilan|Kesepuluh|Ke-(\d+))\s*$`)
	paragrafRe = regexp.MustCompile(`(?m)^\s*Paragraf\s+(\d+)\s*$`)
	pasalRe    = regexp.MustCompile(`(?m)^\s*Pasal\s+(\d+[A-Z]?)\s*$`)
	pasalRomanRe = regexp.MustCompile(`(?m)^\s*Pasal\s+([IVXLCDM]+)\s*$`)
	penjelasanRe = regexp.MustCompile(`(?mi)^\s*PENJELASAN\s*$`)
	aturanRe     = regexp.MustCompile(`(?mi)^\s*ATURAN\s+(PERALIHAN|TAMBAHAN)\s*$`)
	boundaryRe   = regexp.MustCompile(`(?mi)^\s*(BAB\s+[IVXLCDM]+|Bagian\s+\w+|Paragraf\s+\d+|Pasal\s+\d+[A-Z]?|Pasal\s+[IVXLCDM]+|ATURAN\s+(PERALIHAN|TAMBAHAN)|PENJELASAN)\s*$`)
	ayatRe       = regexp.MustCompile(`(?m)^\s*\((\d+[a-z]?)\)\s*`)
	amendmentRe  = regexp.MustCompile(`(?i)Perubahan\s+(Atas|Kedua|Ketiga|Keempat|Kelima)`)
)

var romanValues = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6, "VII": 7, "VIII": 8,
	"IX": 9, "X": 10, "XI": 11, "XII": 12, "XIII": 13, "XIV": 14, "XV": 15,
}

type markerKind int

const (
	markerBab markerKind = iota
	markerBagian
	markerParagraf
	markerPasal
	markerAturan
)

type marker struct {
	kind   markerKind
	pos    int
	end    int
	number string
	text   string
}

// sortCounter is shared across the whole parse so sort_order increases
// monotonically across the entire tree instead of being computed as
// depth*offset, which overflows a bigint at 5+ levels of nesting (the exact
// defect load_to_supabase.py's comment calls out about the old scheme).
type sortCounter struct{ n int }

func (c *sortCounter) next() int {
	c.n++
	return c.n
}

// ParseStructure walks corrected regulation text into a DFS pre-order
// DocumentNode list: BAB > Bagian > Paragraf > Pasal > Ayat, with a
// PENJELASAN sibling subtree and ATURAN PERALIHAN/TAMBAHAN sections nested
// like any other BAB-level marker.
func ParseStructure(text string) []models.DocumentNode {
	counter := &sortCounter{}
	var nodes []models.DocumentNode

	text = fixRomanPasals(text)

	mainText, penjelasanText, hasPenjelasan := splitPenjelasan(text)

	markers := findMarkers(mainText)

	preamble := strings.TrimSpace(mainText[:firstMarkerPos(mainText)])
	if len(markers) > 0 && len(preamble) > 20 {
		nodes = append(nodes, models.DocumentNode{
			ID:        newID(),
			Kind:      models.NodeKindPreamble,
			Content:   preamble,
			Depth:     0,
			Path:      "preamble",
			SortOrder: counter.next(),
		})
	}

	var curBabID, curBagianID, curParagrafID *string
	var curBabPath, curBagianPath, curParagrafPath string
	curDepth := map[markerKind]int{markerBab: 1, markerBagian: 2, markerParagraf: 3, markerPasal: 3}

	for i, m := range markers {
		body := sectionBody(mainText, m, markers, i)
		heading := ""
		if m.kind != markerPasal {
			heading = extractHeading(body)
		}

		switch m.kind {
		case markerBab:
			id := newID()
			nodes = append(nodes, models.DocumentNode{
				ID: id, Kind: models.NodeKindBab, Number: m.number, Heading: heading,
				Depth: 1, Path: "bab_" + m.number, SortOrder: counter.next(),
			})
			curBabID, curBagianID, curParagrafID = &id, nil, nil
			curBabPath = "bab_" + m.number
			curBagianPath, curParagrafPath = "", ""

		case markerAturan:
			id := newID()
			nodes = append(nodes, models.DocumentNode{
				ID: id, Kind: models.NodeKindAturan, Number: m.number, Heading: heading,
				Depth: 1, Path: "aturan_" + strings.ToLower(m.number), SortOrder: counter.next(),
			})
			curBabID, curBagianID, curParagrafID = &id, nil, nil
			curBabPath = "aturan_" + strings.ToLower(m.number)
			curBagianPath, curParagrafPath = "", ""

		case markerBagian:
			id := newID()
			depth := 1
			if curBabID != nil {
				depth = 2
			}
			nodes = append(nodes, models.DocumentNode{
				ID: id, ParentID: curBabID, Kind: models.NodeKindBagian, Number: m.number,
				Heading: heading, Depth: depth, Path: joinPath(curBabPath, "bagian_"+m.number),
				SortOrder: counter.next(),
			})
			curBagianID, curParagrafID = &id, nil
			curBagianPath = joinPath(curBabPath, "bagian_"+m.number)
			curParagrafPath = ""

		case markerParagraf:
			id := newID()
			parent := curBagianID
			parentPath := curBagianPath
			depth := 2
			if parent == nil {
				parent = curBabID
				parentPath = curBabPath
				if parent == nil {
					depth = 1
				}
			} else {
				depth = 3
			}
			nodes = append(nodes, models.DocumentNode{
				ID: id, ParentID: parent, Kind: models.NodeKindParagraf, Number: m.number,
				Heading: heading, Depth: depth, Path: joinPath(parentPath, "paragraf_"+m.number),
				SortOrder: counter.next(),
			})
			curParagrafID = &id
			curParagrafPath = joinPath(parentPath, "paragraf_"+m.number)

		case markerPasal:
			parent := curParagrafID
			parentPath := curParagrafPath
			if parent == nil {
				parent = curBagianID
				parentPath = curBagianPath
			}
			if parent == nil {
				parent = curBabID
				parentPath = curBabPath
			}
			depth := curDepth[markerPasal]
			if parent == nil {
				depth = 1
			} else if curParagrafID != nil {
				depth = 4
			} else if curBagianID != nil {
				depth = 3
			} else {
				depth = 2
			}

			pasalID := newID()
			pasalPath := joinPath(parentPath, "pasal_"+m.number)
			bodyContent, ayatList := splitAyat(body, heading)

			nodes = append(nodes, models.DocumentNode{
				ID: pasalID, ParentID: parent, Kind: models.NodeKindPasal, Number: m.number,
				Heading: heading, Content: bodyContent, Depth: depth, Path: pasalPath,
				SortOrder: counter.next(),
			})

			for _, a := range ayatList {
				nodes = append(nodes, models.DocumentNode{
					ID: newID(), ParentID: &pasalID, Kind: models.NodeKindAyat, Number: a.number,
					Content: a.content, Depth: depth + 1, Path: joinPath(pasalPath, "ayat_"+a.number),
					SortOrder: counter.next(),
				})
			}
		}
	}

	if len(markers) == 0 {
		body := strings.TrimSpace(mainText)
		if len(body) > 0 {
			nodes = append(nodes, models.DocumentNode{
				ID: newID(), Kind: models.NodeKindContent, Content: body, Depth: 0, Path: "content",
				SortOrder: counter.next(),
			})
		}
	}

	if hasPenjelasan {
		nodes = append(nodes, parsePenjelasan(penjelasanText, counter)...)
	}

	return nodes
}

// CountPasals counts how many "pasal" kind nodes a flat node list has.
func CountPasals(nodes []models.DocumentNode) int {
	n := 0
	for _, node := range nodes {
		if node.Kind == models.NodeKindPasal {
			n++
		}
	}
	return n
}

func joinPath(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + "." + segment
}

func newID() string {
	return uuid.New().String()
}

func firstMarkerPos(text string) int {
	loc := boundaryRe.FindStringIndex(text)
	if loc == nil {
		return len(text)
	}
	return loc[0]
}

// findMarkers combines bab/aturan/bagian/paragraf/pasal(arabic) matches,
// sorted by position, adding roman-numeral pasal matches only when that
// position was not already captured by an arabic pasal match (arabic takes
// precedence at an identical offset).
func findMarkers(text string) []marker {
	var markers []marker
	seen := make(map[int]bool)

	add := func(kind markerKind, re *regexp.Regexp) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			number := ""
			if len(loc) >= 4 && loc[2] >= 0 {
				number = text[loc[2]:loc[3]]
			}
			markers = append(markers, marker{kind: kind, pos: start, end: end, number: number})
			seen[start] = true
		}
	}

	add(markerBab, babRe)
	add(markerAturan, aturanRe)
	add(markerBagian, bagianRe)
	add(markerParagraf, paragrafRe)
	add(markerPasal, pasalRe)

	for _, loc := range pasalRomanRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if seen[start] {
			continue
		}
		number := text[loc[2]:loc[3]]
		markers = append(markers, marker{kind: markerPasal, pos: start, end: end, number: number})
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].pos < markers[j].pos })
	return markers
}

func sectionBody(text string, m marker, all []marker, idx int) string {
	end := len(text)
	if idx+1 < len(all) {
		end = all[idx+1].pos
	}
	if m.end > end {
		return ""
	}
	return text[m.end:end]
}

// extractHeading captures the first 1-3 non-blank lines of a section body,
// stopping at a blank line or the next structural marker. Blank lines before
// the first heading line (the remainder of the marker line) are skipped.
func extractHeading(body string) string {
	lines := strings.Split(body, "\n")
	var heading []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(heading) == 0 {
				continue
			}
			break
		}
		if boundaryRe.MatchString(trimmed) {
			break
		}
		heading = append(heading, trimmed)
		if len(heading) == 3 {
			break
		}
	}
	return strings.Join(heading, " ")
}

type ayatEntry struct {
	number  string
	content string
}

// splitAyat extracts numbered ayat "(N)" blocks from a pasal body. The
// heading lines (if any) are stripped from the body before matching. A
// duplicate ayat number (OCR sometimes re-renders one) is dropped: first
// occurrence wins.
func splitAyat(body, heading string) (string, []ayatEntry) {
	rest := body
	if heading != "" {
		idx := strings.Index(rest, heading)
		if idx >= 0 {
			rest = rest[idx+len(heading):]
		}
	}

	locs := ayatRe.FindAllStringSubmatchIndex(rest, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(rest), nil
	}

	seen := make(map[string]bool)
	var ayats []ayatEntry
	for i, loc := range locs {
		number := rest[loc[2]:loc[3]]
		contentStart := loc[1]
		contentEnd := len(rest)
		if i+1 < len(locs) {
			contentEnd = locs[i+1][0]
		}
		content := strings.TrimSpace(rest[contentStart:contentEnd])

		if seen[number] {
			continue
		}
		seen[number] = true
		ayats = append(ayats, ayatEntry{number: number, content: content})
	}

	bodyContent := strings.TrimSpace(rest[:locs[0][0]])
	return bodyContent, ayats
}

// isAmendmentLaw reports whether the title/opening text names this as an
// amendment ("Perubahan Atas/Kedua/Ketiga/...") of another law.
func isAmendmentLaw(text string) bool {
	head := text
	if len(head) > 2000 {
		head = head[:2000]
	}
	return amendmentRe.MatchString(head)
}

func hasAturanPeralihan(text string) bool {
	return regexp.MustCompile(`(?mi)^\s*ATURAN\s+PERALIHAN\s*$`).MatchString(text)
}

// fixRomanPasals rescues OCR-misread arabic pasal numbers that were scanned
// as roman numerals ("Pasal IV" meant to be "Pasal 4"). Three-branch policy,
// exactly matching the original parser:
//   - amendment law: Roman-numeral Pasal numbers never appear by accident
//     in amendment laws (they renumber by "Pasal I", "Pasal II" referring to
//     articles of the amended law) — never converted.
//   - has ATURAN PERALIHAN marker: Roman pasal numbers are legitimate only
//     inside that closing section, so only convert occurrences before it.
//   - otherwise: convert every roman-numeral "Pasal N" occurrence.
func fixRomanPasals(text string) string {
	if isAmendmentLaw(text) {
		return text
	}

	convert := func(s string) string {
		return pasalRomanRe.ReplaceAllStringFunc(s, func(match string) string {
			sub := pasalRomanRe.FindStringSubmatch(match)
			if len(sub) < 2 {
				return match
			}
			if val, ok := romanValues[strings.ToUpper(sub[1])]; ok {
				return "Pasal " + strconv.Itoa(val)
			}
			return match
		})
	}

	if hasAturanPeralihan(text) {
		loc := regexp.MustCompile(`(?mi)^\s*ATURAN\s+PERALIHAN\s*$`).FindStringIndex(text)
		before, after := text[:loc[0]], text[loc[0]:]
		return convert(before) + after
	}

	return convert(text)
}

// splitPenjelasan locates the PENJELASAN section. Without that marker it
// searches the latter half of the text for "I. UMUM" or "II. PASAL DEMI
// PASAL" and splits at the nearest blank line before the match (or at the
// match itself when no blank line precedes it).
func splitPenjelasan(text string) (mainText, penjelasanText string, found bool) {
	if loc := penjelasanRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]], text[loc[1]:], true
	}

	half := len(text) / 2
	tail := text[half:]
	if idx := regexp.MustCompile(`(?i)I\.\s*UMUM|II\.\s*PASAL\s+DEMI\s+PASAL`).FindStringIndex(tail); idx != nil {
		cut := half + idx[0]
		if blank := strings.LastIndex(text[:cut], "\n\n"); blank >= 0 {
			cut = blank
		}
		return text[:cut], text[cut:], true
	}

	return text, "", false
}

// parsePenjelasan builds the elucidation subtree: a penjelasan_umum node
// for the general explanation, then a penjelasan_pasal node per
// "Pasal N" block in the "II. PASAL DEMI PASAL" section. Its nodes take
// their sort_order from the parse's shared counter, so the whole elucidation
// subtree sorts after the main body without a separate offset.
func parsePenjelasan(text string, counter *sortCounter) []models.DocumentNode {
	var nodes []models.DocumentNode

	umumRe := regexp.MustCompile(`(?i)I\.\s*UMUM`)
	pasalDemiPasalRe := regexp.MustCompile(`(?i)II\.\s*PASAL\s+DEMI\s+PASAL`)

	umumLoc := umumRe.FindStringIndex(text)
	pasalDemiLoc := pasalDemiPasalRe.FindStringIndex(text)

	if umumLoc != nil {
		pre := strings.TrimSpace(text[:umumLoc[0]])
		if len(pre) > 20 {
			nodes = append(nodes, models.DocumentNode{
				ID: newID(), Kind: models.NodeKindPenjelasanUmum, Heading: "Penjelasan", Content: pre,
				Depth: 1, Path: "penjelasan.pre", SortOrder: counter.next(),
			})
		}
	}

	umumEnd := len(text)
	if pasalDemiLoc != nil {
		umumEnd = pasalDemiLoc[0]
	}
	umumStart := 0
	if umumLoc != nil {
		umumStart = umumLoc[1]
	}
	if umumStart < umumEnd {
		body := strings.TrimSpace(text[umumStart:umumEnd])
		if body != "" {
			nodes = append(nodes, models.DocumentNode{
				ID: newID(), Kind: models.NodeKindPenjelasanUmum, Heading: "I. UMUM", Content: body,
				Depth: 1, Path: "penjelasan.umum", SortOrder: counter.next(),
			})
		}
	}

	if pasalDemiLoc == nil {
		return nodes
	}

	pasalSection := text[pasalDemiLoc[1]:]
	pasalSplitRe := regexp.MustCompile(`(?m)(Pasal\s+\d+[A-Z]?)\s*\n`)
	locs := pasalSplitRe.FindAllStringSubmatchIndex(pasalSection, -1)

	if len(locs) == 0 {
		body := strings.TrimSpace(pasalSection)
		if body != "" {
			nodes = append(nodes, models.DocumentNode{
				ID: newID(), Kind: models.NodeKindPenjelasanPasal, Heading: "Penjelasan Umum Pasal", Content: body,
				Depth: 1, Path: "penjelasan.pasal_demi_pasal", SortOrder: counter.next(),
			})
		}
		return nodes
	}

	pre := strings.TrimSpace(pasalSection[:locs[0][0]])
	if len(pre) > 0 {
		nodes = append(nodes, models.DocumentNode{
			ID: newID(), Kind: models.NodeKindPenjelasanPasal, Heading: "Pasal demi Pasal", Content: pre,
			Depth: 1, Path: "penjelasan.pasal_demi_pasal.intro", SortOrder: counter.next(),
		})
	}

	for i, loc := range locs {
		heading := pasalSection[loc[2]:loc[3]]
		bodyStart := loc[1]
		bodyEnd := len(pasalSection)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		content := strings.TrimSpace(pasalSection[bodyStart:bodyEnd])
		number := strings.TrimSpace(strings.TrimPrefix(heading, "Pasal"))

		nodes = append(nodes, models.DocumentNode{
			ID: newID(), Kind: models.NodeKindPenjelasanPasal, Number: number, Heading: heading, Content: content,
			Depth: 1, Path: "penjelasan.pasal_" + number, SortOrder: counter.next(),
		})
	}

	return nodes
}
