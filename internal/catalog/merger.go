package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/storefront/internal/entities"
)

// Merger finalizes identifiers for a batch of resolved records.
//
// SKUs are not checked against the existing catalog here. Bulk imports
// append every record that has a title; only the single-record add path
// (services.CatalogService.AddBook) rejects a duplicate SKU.
type Merger struct {
	// NewID generates an identifier for a record without a usable source id.
	NewID func(now time.Time, seq int) string

	// Now is the import clock. Defaults to time.Now.
	Now func() time.Time
}

// NewMerger creates a merger with the default ID generator.
func NewMerger() *Merger {
	return &Merger{NewID: GenerateID, Now: time.Now}
}

// GenerateID returns a time-prefixed identifier with a per-record sequence
// number and a random suffix.
func GenerateID(now time.Time, seq int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("book-%d-%d-%s", now.UnixMilli(), seq, suffix)
}

// Merge assigns each record its source id when present and not already used
// in this batch, otherwise a generated one. It returns the books in input
// order and the number of source ids that had to be replaced.
func (m *Merger) Merge(resolved []*Resolved) ([]entities.CatalogBook, int) {
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	newID := m.NewID
	if newID == nil {
		newID = GenerateID
	}

	books := make([]entities.CatalogBook, 0, len(resolved))
	used := make(map[string]bool, len(resolved))
	reassigned := 0
	seq := 0

	for _, r := range resolved {
		id := strings.TrimSpace(r.SourceID)
		if id != "" && used[id] {
			reassigned++
			id = ""
		}
		for id == "" || used[id] {
			seq++
			id = newID(now, seq)
		}
		used[id] = true

		book := r.Book
		book.ID = id
		books = append(books, book)
	}

	return books, reassigned
}
