package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ViaEstate/feed-ingest/internal/domain"
	"github.com/ViaEstate/feed-ingest/internal/feed"
)

/********** entity decoding **********/

// entityTable is decoded in order. The angle-bracket and quote entities
// contain literal "&" sequences, so "&amp;" must be decoded last to avoid
// double-unescaping.
var entityTable = []struct{ from, to string }{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&nbsp;", " "},
	{"&hellip;", "…"},
	{"&mdash;", "—"},
	{"&ndash;", "–"},
	{"&lsquo;", "‘"},
	{"&rsquo;", "’"},
	{"&ldquo;", "“"},
	{"&rdquo;", "”"},
	{"&amp;", "&"},
}

func decodeEntities(s string) string {
	for _, e := range entityTable {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	return s
}

/********** numeric extraction **********/

var (
	priceRe      = regexp.MustCompile(`\d[\d.]*`)
	leadingIntRe = regexp.MustCompile(`\d+`)
)

// parsePrice extracts the first run of digit groups from a free-text price
// ("590.000 €" -> 590000). Dots are thousands separators. Missing or
// unmatched input yields 0, never an error.
func parsePrice(raw string) int64 {
	m := priceRe.FindString(raw)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m, ".", ""), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseLeadingInt extracts the first digit run from mixed text
// ("120 m²" -> 120). Absent or unparsable input yields nil.
func parseLeadingInt(raw string) *int {
	m := leadingIntRe.FindString(raw)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

/********** property type inference **********/

// typeKeywords is ordered: "villa" is tested before the generic "house"
// substring so "Villa House" classifies as villa.
var typeKeywords = []struct {
	needles []string
	t       domain.PropertyType
}{
	{[]string{"villa", "detached"}, domain.TypeVilla},
	{[]string{"apartment", "flat"}, domain.TypeApartment},
	{[]string{"house"}, domain.TypeHouse},
	{[]string{"penthouse"}, domain.TypePenthouse},
	{[]string{"townhouse"}, domain.TypeTownhouse},
	{[]string{"commercial"}, domain.TypeCommercial},
	{[]string{"land"}, domain.TypeLand},
}

func inferPropertyType(title string) domain.PropertyType {
	low := strings.ToLower(title)
	for _, kw := range typeKeywords {
		for _, n := range kw.needles {
			if strings.Contains(low, n) {
				return kw.t
			}
		}
	}
	return domain.TypeHouse
}

/********** record normalization **********/

// normalizeRecord maps a raw feed record into the canonical property,
// minus resolved images and locale variants. idx is the record's position
// in the feed, used to synthesize a reference when the feed omits one.
func normalizeRecord(idx int, rec feed.Record, country string) domain.Property {
	ref := rec.Reference
	if ref == "" {
		ref = fmt.Sprintf("viaestate-%04d", idx+1)
	}
	title := decodeEntities(rec.Title)
	return domain.Property{
		Reference:   ref,
		Title:       title,
		Description: decodeEntities(rec.Description),
		Type:        inferPropertyType(title),
		Price:       parsePrice(rec.Price),
		Bedrooms:    parseLeadingInt(rec.Rooms),
		Bathrooms:   parseLeadingInt(rec.Baths),
		Area:        parseLeadingInt(rec.Area),
		PlotArea:    parseLeadingInt(rec.Plot),
		Country:     country,
		City:        rec.City,
		Status:      domain.StatusPublished,
	}
}

// capImages drops empty entries and truncates to max before any network
// work happens; the bound caps per-record download and storage cost.
func capImages(urls []string, max int) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		out = append(out, u)
		if len(out) == max {
			break
		}
	}
	return out
}
