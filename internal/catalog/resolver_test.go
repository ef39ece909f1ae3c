package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestResolver(strict bool) *Resolver {
	return &Resolver{
		LocaleMarkers: DefaultLocaleMarkers,
		Strict:        strict,
		Now:           func() time.Time { return fixedNow },
	}
}

func TestResolver_DefaultsForUnrecognizedKeys(t *testing.T) {
	r := newTestResolver(false)

	res, issues, ok := r.Resolve(0, RawRecord{"title": String("Only A Title"), "unknown": String("x")})

	require.True(t, ok)
	assert.Empty(t, issues)
	b := res.Book
	assert.Equal(t, "Only A Title", b.Title)
	assert.Equal(t, DefaultAuthor, b.Author)
	assert.Equal(t, DefaultPublisher, b.Publisher)
	assert.Equal(t, DefaultDescription, b.Description)
	assert.Equal(t, "", b.TitleLocalized)
	assert.Equal(t, "General", b.Category)
	assert.Equal(t, 0, b.StockQuantity)
	assert.True(t, b.InStock)
	assert.Equal(t, 0.5, b.Weight)
	assert.Equal(t, 20.0, b.Dimensions.Length)
	assert.Equal(t, 13.0, b.Dimensions.Width)
	assert.Equal(t, 2.0, b.Dimensions.Height)
	assert.Equal(t, 0, b.Pages)
	assert.Equal(t, 4.0, b.Rating)
	assert.Equal(t, 0, b.ReviewsCount)
	assert.Equal(t, 0.0, b.Price)
	assert.Equal(t, 0.0, b.OriginalPrice)
	assert.False(t, b.Featured)
	assert.Equal(t, []string{}, b.Tags)
	assert.Nil(t, b.SKU)
	assert.Nil(t, b.ISBN)
	assert.Equal(t, "2026-03-14", b.PublishedDate)
	assert.Equal(t, "2026-03-14T10:30:00Z", b.AddedDate)
	assert.Equal(t, "", res.SourceID)
}

func TestResolver_TitleCandidates(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
		want   string
		ok     bool
	}{
		{name: "primary key", record: RawRecord{"title": String("A"), "name": String("B")}, want: "A", ok: true},
		{name: "capitalized", record: RawRecord{"Title": String("A")}, want: "A", ok: true},
		{name: "name fallback", record: RawRecord{"name": String("Kanyasulkam")}, want: "Kanyasulkam", ok: true},
		{name: "Name fallback", record: RawRecord{"Name": String("B")}, want: "B", ok: true},
		{name: "blank primary falls through", record: RawRecord{"title": String("  "), "name": String("C")}, want: "C", ok: true},
		{name: "numeric title", record: RawRecord{"title": Number(1984)}, want: "1984", ok: true},
		{name: "all blank", record: RawRecord{"title": String(""), "Title": Null()}, ok: false},
		{name: "empty record", record: RawRecord{}, ok: false},
	}

	r := newTestResolver(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, ok := r.Resolve(0, tt.record)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, res.Book.Title)
			} else {
				assert.Nil(t, res)
			}
		})
	}
}

func TestResolver_NumericCoercion(t *testing.T) {
	r := newTestResolver(false)

	res, issues, ok := r.Resolve(0, RawRecord{
		"title":         String("Kanyasulkam"),
		"price":         String("350"),
		"stockQuantity": String("not a number"),
		"pages":         Number(212.7),
		"weight":        String("-1"),
		"rating":        String("7"),
		"reviewsCount":  Number(12),
	})

	require.True(t, ok)
	assert.Empty(t, issues, "lenient mode swallows coercion failures")
	assert.Equal(t, 350.0, res.Book.Price)
	assert.Equal(t, 350.0, res.Book.OriginalPrice)
	assert.Equal(t, 0, res.Book.StockQuantity)
	assert.Equal(t, 212, res.Book.Pages)
	assert.Equal(t, DefaultWeight, res.Book.Weight)
	assert.Equal(t, DefaultRating, res.Book.Rating)
	assert.Equal(t, 12, res.Book.ReviewsCount)
}

func TestResolver_StrictModeCollectsIssues(t *testing.T) {
	r := newTestResolver(true)

	res, issues, ok := r.Resolve(3, RawRecord{
		"title":         String("Kanyasulkam"),
		"price":         String("₹350"),
		"featured":      String("maybe"),
		"publishedDate": String("someday"),
	})

	require.True(t, ok)
	assert.Equal(t, 0.0, res.Book.Price)
	assert.False(t, res.Book.Featured)
	assert.Equal(t, "2026-03-14", res.Book.PublishedDate)

	require.Len(t, issues, 3)
	fields := []string{issues[0].Field, issues[1].Field, issues[2].Field}
	assert.ElementsMatch(t, []string{"price", "featured", "publishedDate"}, fields)
	for _, issue := range issues {
		assert.Equal(t, 3, issue.Index)
	}
}

func TestResolver_OriginalPrice(t *testing.T) {
	tests := []struct {
		name   string
		record RawRecord
		want   float64
	}{
		{name: "absent defaults to price", record: RawRecord{"price": Number(120)}, want: 120},
		{name: "invalid defaults to price", record: RawRecord{"price": Number(120), "originalPrice": String("n/a")}, want: 120},
		{name: "below price defaults to price", record: RawRecord{"price": Number(120), "originalPrice": Number(100)}, want: 120},
		{name: "explicit value", record: RawRecord{"price": Number(120), "original_price": String("150")}, want: 150},
		{name: "regular price", record: RawRecord{"price": String("99"), "regular_price": String("149")}, want: 149},
		{name: "zero price", record: RawRecord{"price": Number(0)}, want: 0},
	}

	r := newTestResolver(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.record["title"] = String("Book")
			res, _, ok := r.Resolve(0, tt.record)
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Book.OriginalPrice)
			assert.GreaterOrEqual(t, res.Book.OriginalPrice, res.Book.Price)
		})
	}
}

func TestResolver_InStock(t *testing.T) {
	tests := []struct {
		name  string
		value *Value
		want  bool
	}{
		{name: "absent", want: true},
		{name: "true text", value: ptr(String("TRUE")), want: true},
		{name: "instock", value: ptr(String("InStock")), want: true},
		{name: "outofstock stays open", value: ptr(String("outofstock")), want: true},
		{name: "onbackorder stays open", value: ptr(String("onbackorder")), want: true},
		{name: "false text stays open", value: ptr(String("false")), want: true},
		{name: "zero stays open", value: ptr(Number(0)), want: true},
		{name: "bool false stays open", value: ptr(Bool(false)), want: true},
		{name: "bool true", value: ptr(Bool(true)), want: true},
	}

	r := newTestResolver(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RawRecord{"title": String("Book")}
			if tt.value != nil {
				rec["stock_status"] = *tt.value
			}
			res, _, ok := r.Resolve(0, rec)
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Book.InStock)
		})
	}
}

func TestResolver_Tags(t *testing.T) {
	r := newTestResolver(false)

	t.Run("comma separated", func(t *testing.T) {
		res, _, _ := r.Resolve(0, RawRecord{"title": String("B"), "tags": String(" poetry, ,classic,poetry ,telugu")})
		assert.Equal(t, []string{"poetry", "classic", "telugu"}, res.Book.Tags)
	})

	t.Run("structured list", func(t *testing.T) {
		tags := List(
			Map(map[string]Value{"id": Number(1), "name": String("drama")}),
			Map(map[string]Value{"id": Number(2), "name": String("satire")}),
		)
		res, _, _ := r.Resolve(0, RawRecord{"title": String("B"), "tags": tags})
		assert.Equal(t, []string{"drama", "satire"}, res.Book.Tags)
	})
}

func TestResolver_CategoryFromStructuredList(t *testing.T) {
	r := newTestResolver(false)
	categories := List(
		Map(map[string]Value{"name": String("Poetry")}),
		Map(map[string]Value{"name": String("Classics")}),
	)

	res, _, ok := r.Resolve(0, RawRecord{"name": String("B"), "categories": categories})

	require.True(t, ok)
	assert.Equal(t, "Poetry", res.Book.Category)
}

func TestResolver_RemoteAttributes(t *testing.T) {
	r := newTestResolver(false)
	attributes := List(
		Map(map[string]Value{"name": String("Author"), "options": List(String("Gurajada Apparao"))}),
		Map(map[string]Value{"name": String("Author (Telugu)"), "options": List(String("గురజాడ అప్పారావు"))}),
		Map(map[string]Value{"name": String("PUBLISHER"), "options": List(String(""), String("Visalaandhra"))}),
		Map(map[string]Value{"name": String("Telugu Title"), "options": List(String("కన్యాశుల్కం"))}),
		Map(map[string]Value{"name": String("Pages"), "options": List(String("248"))}),
		Map(map[string]Value{"name": String("Language"), "options": List(String("Telugu"))}),
	)

	res, _, ok := r.Resolve(0, RawRecord{
		"id":         Number(4512),
		"name":       String("Kanyasulkam"),
		"attributes": attributes,
		"dimensions": Map(map[string]Value{"length": String("21.5"), "width": String(""), "height": String("3")}),
	})

	require.True(t, ok)
	b := res.Book
	assert.Equal(t, "4512", res.SourceID)
	assert.Equal(t, "Gurajada Apparao", b.Author)
	assert.Equal(t, "గురజాడ అప్పారావు", b.AuthorLocalized)
	assert.Equal(t, "Visalaandhra", b.Publisher)
	assert.Equal(t, "కన్యాశుల్కం", b.TitleLocalized)
	assert.Equal(t, 248, b.Pages)
	assert.Equal(t, "Telugu", b.Language)
	assert.Equal(t, 21.5, b.Dimensions.Length)
	assert.Equal(t, DefaultWidth, b.Dimensions.Width)
	assert.Equal(t, 3.0, b.Dimensions.Height)
}

func TestResolver_FlatKeysWinOverAttributes(t *testing.T) {
	r := newTestResolver(false)
	attributes := List(Map(map[string]Value{"name": String("Author"), "options": List(String("From Attribute"))}))

	res, _, _ := r.Resolve(0, RawRecord{"title": String("B"), "author": String("Flat"), "attributes": attributes})

	assert.Equal(t, "Flat", res.Book.Author)
}

func TestResolver_Identifiers(t *testing.T) {
	r := newTestResolver(false)

	res, _, ok := r.Resolve(0, RawRecord{
		"title": String("B"),
		"SKU":   String("TEL-001"),
		"isbn":  String("0-306-40615-2"),
	})

	require.True(t, ok)
	require.NotNil(t, res.Book.SKU)
	require.NotNil(t, res.Book.ISBN)
	assert.Equal(t, "TEL-001", *res.Book.SKU)
	assert.Equal(t, "9780306406157", *res.Book.ISBN)
}

func TestResolver_PublishedDate(t *testing.T) {
	tests := []struct {
		raw  Value
		want string
	}{
		{raw: String("1956-08-01"), want: "1956-08-01"},
		{raw: String("2021-05-04T10:11:12"), want: "2021-05-04"},
		{raw: String("2021-05-04T10:11:12+05:30"), want: "2021-05-04"},
		{raw: Number(1910), want: "1910-01-01"},
	}

	r := newTestResolver(false)
	for _, tt := range tests {
		t.Run(tt.raw.Text(), func(t *testing.T) {
			res, _, _ := r.Resolve(0, RawRecord{"title": String("B"), "published_date": tt.raw})
			assert.Equal(t, tt.want, res.Book.PublishedDate)
		})
	}
}

func TestResolver_DefaultDatesAreUTC(t *testing.T) {
	// 23:30 at UTC-5 is already the next day in UTC.
	local := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))
	r := &Resolver{LocaleMarkers: DefaultLocaleMarkers, Now: func() time.Time { return local }}

	res, _, ok := r.Resolve(0, RawRecord{"title": String("B")})

	require.True(t, ok)
	assert.Equal(t, "2026-03-15", res.Book.PublishedDate)
	assert.True(t, strings.HasPrefix(res.Book.AddedDate, res.Book.PublishedDate))
}

func ptr(v Value) *Value { return &v }
