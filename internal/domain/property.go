package domain

// PropertyType is inferred from the listing title when the feed does not
// carry an explicit type.
type PropertyType string

const (
	TypeVilla      PropertyType = "villa"
	TypeApartment  PropertyType = "apartment"
	TypeHouse      PropertyType = "house"
	TypePenthouse  PropertyType = "penthouse"
	TypeTownhouse  PropertyType = "townhouse"
	TypeCommercial PropertyType = "commercial"
	TypeLand       PropertyType = "land"
)

// StatusPublished is set on every write; the import pipeline has no
// draft/review states.
const StatusPublished = "published"

// Property is the canonical record upserted into the store, keyed by the
// feed-assigned Reference.
type Property struct {
	Reference   string
	Title       string
	Description string
	Type        PropertyType
	Price       int64 // integer currency units, never negative
	Bedrooms    *int
	Bathrooms   *int
	Area        *int // m²
	PlotArea    *int // m²
	Country     string
	City        string
	Images      []string // resolved public URLs, already capped
	Status      string
}

// LocaleVariant is one localized title/description pair. Translated is
// false when the text fell back to the source language, so operators can
// find variants that need manual review.
type LocaleVariant struct {
	Reference   string
	Locale      string
	Title       string
	Description string
	Translated  bool
}
