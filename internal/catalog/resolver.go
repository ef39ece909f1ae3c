package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/isbn"
)

const isoDate = "2006-01-02"

var publishedDateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006-01",
	"2006",
}

// Resolved is one record that survived field resolution.
type Resolved struct {
	Index    int
	Record   RawRecord
	SourceID string
	Book     entities.CatalogBook
}

// Resolver maps raw records to the non-media fields of a CatalogBook.
type Resolver struct {
	// LocaleMarkers qualify remote attribute names as localized variants.
	LocaleMarkers []string

	// Strict collects coercion failures instead of swallowing them.
	// Values still fall back to defaults.
	Strict bool

	// Now is the import clock. Defaults to time.Now.
	Now func() time.Time
}

// NewResolver creates a resolver with the default locale markers.
func NewResolver() *Resolver {
	return &Resolver{LocaleMarkers: DefaultLocaleMarkers, Now: time.Now}
}

// Resolve maps one record. It returns false when no title candidate yields a
// non-empty value; title is the only field whose absence rejects a record.
func (r *Resolver) Resolve(index int, rec RawRecord) (*Resolved, []CoercionIssue, bool) {
	res := resolution{resolver: r, index: index, rec: rec}

	title := res.text(titleCandidates, "")
	if title == "" {
		return nil, nil, false
	}

	now := r.now()
	book := entities.CatalogBook{
		SKU:  res.optional(skuCandidates),
		ISBN: res.isbn(),

		Title:                title,
		TitleLocalized:       res.text(titleLocalizedCandidates, ""),
		Author:               res.text(authorCandidates, DefaultAuthor),
		AuthorLocalized:      res.text(authorLocalizedCandidates, ""),
		Publisher:            res.text(publisherCandidates, DefaultPublisher),
		PublisherLocalized:   res.text(publisherLocalizedCandidates, ""),
		Description:          res.text(descriptionCandidates, DefaultDescription),
		DescriptionLocalized: res.text(descriptionLocalizedCandidates, ""),
		Language:             res.text(languageCandidates, ""),

		StockQuantity: res.integer("stockQuantity", stockQuantityCandidates, DefaultStockQuantity, nonNegative),
		InStock:       res.inStock(),

		Category: res.category(),
		Tags:     res.tags(),
		Featured: res.flag("featured", featuredCandidates, false),

		Pages:  res.integer("pages", pagesCandidates, DefaultPages, nonNegative),
		Weight: res.number("weight", weightCandidates, DefaultWeight, positive),
		Dimensions: entities.Dimensions{
			Length: res.number("dimensions.length", lengthCandidates, DefaultLength, positive),
			Width:  res.number("dimensions.width", widthCandidates, DefaultWidth, positive),
			Height: res.number("dimensions.height", heightCandidates, DefaultHeight, positive),
		},

		Rating:       res.number("rating", ratingCandidates, DefaultRating, func(f float64) bool { return f >= 0 && f <= 5 }),
		ReviewsCount: res.integer("reviewsCount", reviewsCountCandidates, DefaultReviewsCount, nonNegative),

		PublishedDate: res.date("publishedDate", publishedDateCandidates, now.UTC().Format(isoDate)),
		AddedDate:     now.UTC().Format(time.RFC3339),
	}

	book.Price = res.number("price", priceCandidates, 0, nonNegative)
	// originalPrice falls back to price, never to a constant, so the
	// discount (originalPrice - price) cannot go negative.
	book.OriginalPrice = res.number("originalPrice", originalPriceCandidates, book.Price, func(f float64) bool { return f >= book.Price })

	out := &Resolved{
		Index:    index,
		Record:   rec,
		SourceID: res.text(idCandidates, ""),
		Book:     book,
	}
	return out, res.issues, true
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) markers() []string {
	if r.LocaleMarkers == nil {
		return DefaultLocaleMarkers
	}
	return r.LocaleMarkers
}

func nonNegative(f float64) bool { return f >= 0 }
func positive(f float64) bool    { return f > 0 }

// resolution holds per-record state while fields are resolved.
type resolution struct {
	resolver *Resolver
	index    int
	rec      RawRecord
	issues   []CoercionIssue
}

func (res *resolution) find(candidates []candidate) (Value, bool) {
	return lookup(res.rec, res.resolver.markers(), candidates)
}

func (res *resolution) coercionFailed(field string, v Value) {
	if !res.resolver.Strict {
		return
	}
	res.issues = append(res.issues, CoercionIssue{Index: res.index, Field: field, Raw: scalarText(v)})
}

func (res *resolution) text(candidates []candidate, def string) string {
	v, ok := res.find(candidates)
	if !ok {
		return def
	}
	if s := scalarText(v); s != "" {
		return s
	}
	return def
}

func (res *resolution) optional(candidates []candidate) *string {
	s := res.text(candidates, "")
	if s == "" {
		return nil
	}
	return &s
}

func (res *resolution) isbn() *string {
	raw := res.text(isbnCandidates, "")
	if raw == "" {
		return nil
	}
	cleaned := isbn.Clean(raw)
	if cleaned == "" {
		return nil
	}
	if upgraded := isbn.To13(cleaned); upgraded != "" {
		cleaned = upgraded
	}
	return &cleaned
}

// number resolves a numeric field. Unparseable values and values rejected by
// valid fall through to def.
func (res *resolution) number(field string, candidates []candidate, def float64, valid func(float64) bool) float64 {
	v, ok := res.find(candidates)
	if !ok {
		return def
	}
	f, ok := v.Float()
	if !ok || !valid(f) {
		res.coercionFailed(field, v)
		return def
	}
	return f
}

func (res *resolution) integer(field string, candidates []candidate, def int, valid func(float64) bool) int {
	f := res.number(field, candidates, float64(def), valid)
	if f > math.MaxInt32 {
		res.coercionFailed(field, Number(f))
		return def
	}
	return int(math.Trunc(f))
}

// inStock matches the raw value against "true" and "instock"
// (case-insensitive), but a miss does not close the item: absence and every
// other value, "outofstock" included, also resolve to true.
func (res *resolution) inStock() bool {
	v, ok := res.find(inStockCandidates)
	if !ok {
		return true
	}
	if v.Kind() == KindBool && v.b {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(scalarText(v))) {
	case "true", "instock":
		return true
	}
	return true
}

func (res *resolution) flag(field string, candidates []candidate, def bool) bool {
	v, ok := res.find(candidates)
	if !ok {
		return def
	}
	if v.Kind() == KindBool {
		return v.b
	}
	switch strings.ToLower(scalarText(v)) {
	case "true", "1", "yes", "y":
		return true
	case "false", "0", "no", "n":
		return false
	default:
		res.coercionFailed(field, v)
		return def
	}
}

func (res *resolution) category() string {
	v, ok := res.find(categoryCandidates)
	if !ok {
		return DefaultCategory
	}
	// Remote products carry a list of categories; the first one wins.
	for _, item := range v.Items() {
		if s := scalarText(item); s != "" {
			return s
		}
	}
	return DefaultCategory
}

// tags resolves an ordered set: comma-separated text is split and trimmed,
// structured lists contribute each element's name. Empty entries and
// repeats are dropped.
func (res *resolution) tags() []string {
	tags := []string{}
	v, ok := res.find(tagsCandidates)
	if !ok {
		return tags
	}

	var raw []string
	if v.Kind() == KindList {
		for _, item := range v.Items() {
			raw = append(raw, scalarText(item))
		}
	} else {
		raw = strings.Split(scalarText(v), ",")
	}

	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

func (res *resolution) date(field string, candidates []candidate, def string) string {
	v, ok := res.find(candidates)
	if !ok {
		return def
	}
	raw := scalarText(v)
	for _, layout := range publishedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}
	res.coercionFailed(field, v)
	return def
}
