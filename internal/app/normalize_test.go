package app

import (
	"testing"

	"github.com/ViaEstate/feed-ingest/internal/domain"
	"github.com/ViaEstate/feed-ingest/internal/feed"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"590.000 €", 590000},
		{"1.250.000 €", 1250000},
		{"75000", 75000},
		{"price on request", 0},
		{"", 0},
		{"€ 99", 99},
	}
	for _, c := range cases {
		if got := parsePrice(c.in); got != c.want {
			t.Errorf("parsePrice(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseLeadingInt(t *testing.T) {
	if got := parseLeadingInt("120 m²"); got == nil || *got != 120 {
		t.Fatalf("parseLeadingInt(120 m²) = %v", got)
	}
	if got := parseLeadingInt("approx. 45 sqm"); got == nil || *got != 45 {
		t.Fatalf("parseLeadingInt(approx. 45 sqm) = %v", got)
	}
	if got := parseLeadingInt("n/a"); got != nil {
		t.Fatalf("expected nil for non-numeric input, got %d", *got)
	}
	if got := parseLeadingInt(""); got != nil {
		t.Fatalf("expected nil for empty input, got %d", *got)
	}
}

func TestInferPropertyType(t *testing.T) {
	cases := []struct {
		title string
		want  domain.PropertyType
	}{
		{"Villa House", domain.TypeVilla}, // villa wins over the generic house substring
		{"Detached home with pool", domain.TypeVilla},
		{"Seaside Apartment", domain.TypeApartment},
		{"Ground floor flat", domain.TypeApartment},
		{"Country House", domain.TypeHouse},
		{"Plot of land", domain.TypeLand},
		{"Commercial premises", domain.TypeCommercial},
		{"Rustic Cottage", domain.TypeHouse}, // no keyword, default
		{"", domain.TypeHouse},
	}
	for _, c := range cases {
		if got := inferPropertyType(c.title); got != c.want {
			t.Errorf("inferPropertyType(%q) = %s, want %s", c.title, got, c.want)
		}
	}
}

func TestDecodeEntities(t *testing.T) {
	in := "Bright &amp; airy &nbsp;home"
	want := "Bright & airy  home"
	if got := decodeEntities(in); got != want {
		t.Fatalf("decodeEntities(%q) = %q, want %q", in, got, want)
	}

	// "&amp;lt;" must decode the amp last: the result is the literal "&lt;",
	// not "<".
	if got := decodeEntities("&amp;lt;"); got != "&lt;" {
		t.Fatalf("double-unescape artifact: got %q", got)
	}

	if got := decodeEntities("&quot;sea view&quot; &ndash; 2 beds"); got != `"sea view" – 2 beds` {
		t.Fatalf("unexpected decode: %q", got)
	}
}

func TestCapImages(t *testing.T) {
	in := []string{"a", "", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	got := capImages(in, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 images, got %d", len(got))
	}
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("empty entries should be dropped before truncation: %v", got[:2])
	}
}

func TestNormalizeRecord(t *testing.T) {
	rec := feed.Record{
		Reference:   "ky-123",
		Title:       "Luxury Villa &amp; Guest House",
		Description: "Sea views&hellip;",
		City:        "Marbella",
		Price:       "1.200.000 €",
		Rooms:       "4",
		Baths:       "3",
		Area:        "250 m²",
		Plot:        "500 m²",
	}
	p := normalizeRecord(0, rec, "Spain")
	if p.Reference != "ky-123" {
		t.Fatalf("reference: %q", p.Reference)
	}
	if p.Title != "Luxury Villa & Guest House" {
		t.Fatalf("title: %q", p.Title)
	}
	if p.Type != domain.TypeVilla {
		t.Fatalf("type: %s", p.Type)
	}
	if p.Price != 1200000 {
		t.Fatalf("price: %d", p.Price)
	}
	if p.Bedrooms == nil || *p.Bedrooms != 4 || p.Bathrooms == nil || *p.Bathrooms != 3 {
		t.Fatalf("rooms/baths: %v %v", p.Bedrooms, p.Bathrooms)
	}
	if p.Area == nil || *p.Area != 250 {
		t.Fatalf("area: %v", p.Area)
	}
	if p.PlotArea == nil || *p.PlotArea != 500 {
		t.Fatalf("plot: %v", p.PlotArea)
	}
	if p.Status != domain.StatusPublished {
		t.Fatalf("status: %q", p.Status)
	}
	if p.Country != "Spain" || p.City != "Marbella" {
		t.Fatalf("location: %q %q", p.Country, p.City)
	}
}

func TestNormalizeRecord_SyntheticReference(t *testing.T) {
	a := normalizeRecord(0, feed.Record{Title: "x"}, "Spain")
	b := normalizeRecord(1, feed.Record{Title: "y"}, "Spain")
	if a.Reference == "" || b.Reference == "" {
		t.Fatal("expected synthetic references")
	}
	if a.Reference == b.Reference {
		t.Fatalf("synthetic references must not collide within a run: %q", a.Reference)
	}
}
