package catalog

import (
	"fmt"
	"strings"
)

// DefaultPlaceholderImage is used when a record carries no image reference.
const DefaultPlaceholderImage = "https://placehold.co/300x450?text=No+Cover"

const maxIndexedImages = 10

var (
	listImageKeys     = []string{"images", "Images"}
	singleImageKeys   = []string{"image", "Image", "cover_image", "coverImage", "images", "Images"}
	structuredURLKeys = []string{"src", "url", "URL"}
)

// Consolidator produces the image list and cover image for one record.
type Consolidator struct {
	Placeholder string
}

// NewConsolidator creates a consolidator with the given placeholder URL.
// An empty placeholder selects DefaultPlaceholderImage.
func NewConsolidator(placeholder string) *Consolidator {
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	return &Consolidator{Placeholder: placeholder}
}

// Images returns the deduplicated image list for rec. The first applicable
// rule wins; rules are never combined:
//
//  1. an "images" field holding a list, or text containing a comma
//  2. indexed keys image1..image10 (and Image1..Image10), in index order
//  3. a singular alias (image, Image, cover_image, coverImage, or a
//     comma-free "images")
//  4. the placeholder
//
// The result is never empty.
func (c *Consolidator) Images(rec RawRecord) []string {
	for _, rule := range []func(RawRecord) []string{fromImageList, fromIndexedKeys, fromSingleAlias} {
		if images := dedupe(rule(rec)); len(images) > 0 {
			return images
		}
	}
	return []string{c.placeholder()}
}

// Apply fills Images and CoverImage on a resolved record. CoverImage is
// always Images[0].
func (c *Consolidator) Apply(r *Resolved) {
	r.Book.Images = c.Images(r.Record)
	r.Book.CoverImage = r.Book.Images[0]
}

func (c *Consolidator) placeholder() string {
	if c.Placeholder == "" {
		return DefaultPlaceholderImage
	}
	return c.Placeholder
}

func fromImageList(rec RawRecord) []string {
	for _, k := range listImageKeys {
		v, ok := rec[k]
		if !ok || v.IsEmpty() {
			continue
		}
		if v.Kind() == KindList {
			var urls []string
			for _, item := range v.Items() {
				urls = append(urls, imageURL(item))
			}
			return urls
		}
		if text := v.Text(); strings.Contains(text, ",") {
			return strings.Split(text, ",")
		}
	}
	return nil
}

func fromIndexedKeys(rec RawRecord) []string {
	var urls []string
	for i := 1; i <= maxIndexedImages; i++ {
		for _, k := range []string{fmt.Sprintf("image%d", i), fmt.Sprintf("Image%d", i)} {
			if v, ok := rec[k]; ok && !v.IsEmpty() {
				urls = append(urls, imageURL(v))
				break
			}
		}
	}
	return urls
}

func fromSingleAlias(rec RawRecord) []string {
	for _, k := range singleImageKeys {
		if v, ok := rec[k]; ok && !v.IsEmpty() {
			// Comma-bearing text was already handled by the list rule.
			if url := imageURL(v); url != "" && !strings.Contains(url, ",") {
				return []string{url}
			}
		}
	}
	return nil
}

// imageURL extracts a URL from a string or a structured image object.
func imageURL(v Value) string {
	if v.Kind() == KindMap {
		for _, k := range structuredURLKeys {
			if f, ok := v.Field(k); ok && !f.IsEmpty() {
				return f.Text()
			}
		}
		return ""
	}
	return v.Text()
}

// dedupe trims entries and drops empties and repeats, preserving order.
func dedupe(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
