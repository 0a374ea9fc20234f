package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed means the document could not be parsed as a property feed
// at the top level. Fatal for the run.
var ErrMalformed = errors.New("feed: malformed document")

// Record is one loosely-typed <property> node. Everything stays a raw
// string here; normalization happens downstream.
type Record struct {
	Reference     string
	Title         string
	Description   string
	City          string
	Price         string
	Rooms         string
	Baths         string
	Area          string
	Plot          string
	Terrace       string
	IBIFees       string
	CommunityFees string
	BasuraTax     string
	Images        []string
}

type xmlDocument struct {
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Reference     string    `xml:"reference"`
	ID            string    `xml:"id"`
	Title         string    `xml:"title"`
	Description   string    `xml:"description"`
	Location      string    `xml:"location"`
	Town          string    `xml:"town"`
	Price         string    `xml:"price"`
	Rooms         string    `xml:"rooms"`
	Baths         string    `xml:"baths"`
	Area          string    `xml:"area"`
	Plot          string    `xml:"plot"`
	Terrace       string    `xml:"terrace"`
	IBIFees       string    `xml:"ibi_fees"`
	CommunityFees string    `xml:"community_fees"`
	BasuraTax     string    `xml:"basura_tax"`
	Images        xmlImages `xml:"images"`
}

type xmlImages struct {
	Images []xmlImage `xml:"image"`
}

// xmlImage tolerates both <image>https://…</image> and
// <image><url>https://…</url></image>.
type xmlImage struct {
	URL  string `xml:"url"`
	Text string `xml:",chardata"`
}

func (i xmlImage) value() string {
	if u := strings.TrimSpace(i.URL); u != "" {
		return u
	}
	return strings.TrimSpace(i.Text)
}

// Parse decodes the feed document into a canonical sequence of records.
// A repeated element, a single bare element or none at all are all valid
// XML shapes; decoding into a slice absorbs the first two, and zero
// property nodes is treated as an unexpected document.
func Parse(data []byte) ([]Record, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.Properties) == 0 {
		return nil, fmt.Errorf("%w: no property nodes", ErrMalformed)
	}

	out := make([]Record, 0, len(doc.Properties))
	for _, p := range doc.Properties {
		rec := Record{
			Reference:     strings.TrimSpace(firstNonEmpty(p.Reference, p.ID)),
			Title:         strings.TrimSpace(p.Title),
			Description:   strings.TrimSpace(p.Description),
			City:          strings.TrimSpace(firstNonEmpty(p.Location, p.Town)),
			Price:         strings.TrimSpace(p.Price),
			Rooms:         strings.TrimSpace(p.Rooms),
			Baths:         strings.TrimSpace(p.Baths),
			Area:          strings.TrimSpace(p.Area),
			Plot:          strings.TrimSpace(p.Plot),
			Terrace:       strings.TrimSpace(p.Terrace),
			IBIFees:       strings.TrimSpace(p.IBIFees),
			CommunityFees: strings.TrimSpace(p.CommunityFees),
			BasuraTax:     strings.TrimSpace(p.BasuraTax),
		}
		for _, img := range p.Images.Images {
			if v := img.value(); v != "" {
				rec.Images = append(rec.Images, v)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
