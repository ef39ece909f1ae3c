package catalog

import "strings"

// candidate is one place a canonical field may be found in a raw record.
// Exactly one of key, parent+key, or attribute is meaningful.
type candidate struct {
	key       string
	parent    string
	attribute string
	localized bool
}

// key matches a flat record key.
func key(name string) candidate { return candidate{key: name} }

// nested matches a key inside a map-valued field (e.g. dimensions.length).
func nested(parent, name string) candidate { return candidate{parent: parent, key: name} }

// attr matches a remote product attribute whose name contains keyword and
// carries no language marker.
func attr(keyword string) candidate { return candidate{attribute: keyword} }

// localAttr matches a remote product attribute whose name contains keyword
// and a language marker.
func localAttr(keyword string) candidate { return candidate{attribute: keyword, localized: true} }

// Candidate lists per canonical field, in priority order. The first present,
// non-empty value wins.
var (
	idCandidates = []candidate{key("id"), key("ID"), key("Id"), key("_id")}

	skuCandidates  = []candidate{key("sku"), key("SKU"), key("Sku")}
	isbnCandidates = []candidate{key("isbn"), key("ISBN"), key("isbn13"), key("ISBN13"), key("isbn10"), key("ISBN10"), attr("isbn")}

	titleCandidates = []candidate{key("title"), key("Title"), key("name"), key("Name")}
	titleLocalizedCandidates = []candidate{
		key("titleLocalized"), key("title_localized"), key("titleTelugu"), key("title_telugu"),
		key("Title (Telugu)"), key("Telugu Title"), localAttr("title"), localAttr("name"),
	}

	authorCandidates = []candidate{key("author"), key("Author"), key("authors"), key("Authors"), key("writer"), attr("author"), attr("writer")}
	authorLocalizedCandidates = []candidate{
		key("authorLocalized"), key("author_localized"), key("authorTelugu"), key("author_telugu"),
		key("Author (Telugu)"), key("Telugu Author"), localAttr("author"), localAttr("writer"),
	}

	publisherCandidates = []candidate{key("publisher"), key("Publisher"), attr("publisher")}
	publisherLocalizedCandidates = []candidate{
		key("publisherLocalized"), key("publisher_localized"), key("publisherTelugu"), key("publisher_telugu"),
		key("Publisher (Telugu)"), key("Telugu Publisher"), localAttr("publisher"),
	}

	descriptionCandidates = []candidate{key("description"), key("Description"), key("short_description"), key("desc")}
	descriptionLocalizedCandidates = []candidate{
		key("descriptionLocalized"), key("description_localized"), key("descriptionTelugu"), key("description_telugu"),
		key("Description (Telugu)"), key("Telugu Description"), localAttr("description"),
	}

	languageCandidates = []candidate{key("language"), key("Language"), attr("language")}

	priceCandidates         = []candidate{key("price"), key("Price"), key("sale_price"), key("salePrice")}
	originalPriceCandidates = []candidate{key("originalPrice"), key("original_price"), key("Original Price"), key("regular_price"), key("mrp"), key("MRP")}
	stockQuantityCandidates = []candidate{key("stockQuantity"), key("stock_quantity"), key("stock"), key("Stock"), key("quantity"), key("Quantity")}
	inStockCandidates       = []candidate{key("inStock"), key("in_stock"), key("stock_status"), key("stockStatus"), key("In Stock")}

	categoryCandidates = []candidate{key("category"), key("Category"), key("categories"), key("Categories")}
	tagsCandidates     = []candidate{key("tags"), key("Tags")}
	featuredCandidates = []candidate{key("featured"), key("Featured"), key("isFeatured")}

	pagesCandidates  = []candidate{key("pages"), key("Pages"), key("pageCount"), key("page_count"), attr("pages"), attr("page count")}
	weightCandidates = []candidate{key("weight"), key("Weight")}
	lengthCandidates = []candidate{key("length"), key("Length"), nested("dimensions", "length")}
	widthCandidates  = []candidate{key("width"), key("Width"), nested("dimensions", "width")}
	heightCandidates = []candidate{key("height"), key("Height"), nested("dimensions", "height")}

	ratingCandidates       = []candidate{key("rating"), key("Rating"), key("average_rating")}
	reviewsCountCandidates = []candidate{key("reviewsCount"), key("reviews_count"), key("reviews"), key("rating_count")}

	publishedDateCandidates = []candidate{
		key("publishedDate"), key("published_date"), key("publicationDate"), key("publication_date"),
		key("Published Date"), key("date_created"), attr("published"),
	}
)

// Field defaults.
const (
	DefaultAuthor        = "Unknown Author"
	DefaultPublisher     = "Unknown Publisher"
	DefaultDescription   = "No description available."
	DefaultCategory      = "General"
	DefaultStockQuantity = 0
	DefaultPages         = 0
	DefaultWeight        = 0.5
	DefaultLength        = 20.0
	DefaultWidth         = 13.0
	DefaultHeight        = 2.0
	DefaultRating        = 4.0
	DefaultReviewsCount  = 0
)

// DefaultLocaleMarkers are the substrings that qualify a remote attribute
// name as the localized variant of a field.
var DefaultLocaleMarkers = []string{"telugu", "localized", "_te", "(te)"}

// lookup evaluates candidates in order and returns the first present,
// non-empty value.
func lookup(rec RawRecord, markers []string, candidates []candidate) (Value, bool) {
	for _, c := range candidates {
		var v Value
		var ok bool

		switch {
		case c.attribute != "":
			v, ok = lookupAttribute(rec, markers, c.attribute, c.localized)
		case c.parent != "":
			var parent Value
			if parent, ok = rec[c.parent]; ok {
				v, ok = parent.Field(c.key)
			}
		default:
			v, ok = rec[c.key]
		}

		if ok && !v.IsEmpty() {
			return v, true
		}
	}
	return Value{}, false
}

// lookupAttribute searches the structured "attributes" list of a remote
// product for an attribute whose name contains keyword (case-insensitive),
// and returns its first associated value.
func lookupAttribute(rec RawRecord, markers []string, keyword string, localized bool) (Value, bool) {
	attrs, ok := rec["attributes"]
	if !ok || attrs.Kind() != KindList {
		return Value{}, false
	}

	keyword = strings.ToLower(keyword)
	for _, item := range attrs.Items() {
		nameVal, ok := item.Field("name")
		if !ok {
			continue
		}
		name := strings.ToLower(nameVal.Text())
		if !strings.Contains(name, keyword) {
			continue
		}
		if hasMarker(name, markers) != localized {
			continue
		}

		for _, field := range []string{"options", "option", "value"} {
			v, ok := item.Field(field)
			if !ok {
				continue
			}
			for _, opt := range v.Items() {
				if !opt.IsEmpty() {
					return opt, true
				}
			}
		}
	}
	return Value{}, false
}

func hasMarker(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// scalarText renders a value as text for a text field. Structured values
// (remote categories, tags) contribute their "name" or "value".
func scalarText(v Value) string {
	switch v.Kind() {
	case KindMap:
		for _, k := range []string{"name", "value"} {
			if f, ok := v.Field(k); ok && !f.IsEmpty() {
				return scalarText(f)
			}
		}
		return ""
	case KindList:
		parts := make([]string, 0, len(v.Items()))
		for _, item := range v.Items() {
			if s := scalarText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return v.Text()
	}
}
