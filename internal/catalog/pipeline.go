// Package catalog implements the catalog import and normalization pipeline.
//
// # Architecture
//
// Data flows strictly forward through four stages:
//
//	Source (Reader) → Resolver → Consolidator → Merger → Report
//
// The Source yields loosely-typed RawRecords from a CSV file, a JSON file or
// the paginated WooCommerce product API. The Resolver maps each record onto
// the non-media fields of entities.CatalogBook by trying an ordered list of
// candidate keys per field, falling back to typed defaults. The Consolidator
// builds the image list and cover image. The Merger assigns identifiers that
// are unique within the batch.
//
// The pipeline is stateless: it never touches the catalog store. Callers
// (services.ImportService) persist Report.Accepted.
//
// # Example Usage
//
//	pipeline := catalog.NewPipeline(catalog.Options{})
//	report, err := pipeline.Run(ctx, catalog.NewDelimitedSource(content))
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/storefront/internal/entities"
)

// State is a step of one import invocation.
type State string

const (
	StateIdle          State = "idle"
	StateReading       State = "reading"
	StateResolving     State = "resolving"
	StateConsolidating State = "consolidating"
	StateMerging       State = "merging"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
)

// Report is the outcome of one import invocation.
type Report struct {
	ImportID string `json:"import_id"`
	Origin   Origin `json:"origin"`
	State    State  `json:"state"`
	Strict   bool   `json:"strict"`

	Accepted   []entities.CatalogBook `json:"-"`
	Rejected   int                    `json:"rejected"`
	Rejections []Rejection            `json:"rejections,omitempty"`

	// RecordsRead is the number of records the reader produced.
	RecordsRead int `json:"records_read"`
	// TotalAvailable and Retrieved let callers detect a partial remote fetch.
	TotalAvailable int `json:"total_available"`
	Retrieved      int `json:"retrieved"`

	ReassignedIDs  int             `json:"reassigned_ids"`
	CoercionIssues []CoercionIssue `json:"coercion_issues,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// AcceptedCount returns the number of accepted books.
func (r *Report) AcceptedCount() int {
	return len(r.Accepted)
}

// Partial reports whether fewer records were retrieved than were available.
func (r *Report) Partial() bool {
	return r.TotalAvailable > r.Retrieved
}

// Options configures a Pipeline.
type Options struct {
	PlaceholderImage string
	LocaleMarkers    []string
	Strict           bool

	// Now overrides the import clock (tests).
	Now func() time.Time

	// OnTransition is called on every state change.
	OnTransition func(importID string, from, to State)
}

// Pipeline runs the four import stages sequentially over a whole batch.
type Pipeline struct {
	resolver     *Resolver
	consolidator *Consolidator
	merger       *Merger
	now          func() time.Time
	onTransition func(importID string, from, to State)
	strict       bool
}

// NewPipeline creates a pipeline from options.
func NewPipeline(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	markers := opts.LocaleMarkers
	if len(markers) == 0 {
		markers = DefaultLocaleMarkers
	}

	return &Pipeline{
		resolver:     &Resolver{LocaleMarkers: markers, Strict: opts.Strict, Now: now},
		consolidator: NewConsolidator(opts.PlaceholderImage),
		merger:       &Merger{NewID: GenerateID, Now: now},
		now:          now,
		onTransition: opts.OnTransition,
		strict:       opts.Strict,
	}
}

// Run executes Reading → Resolving → Consolidating → Merging. Only the
// reading stage can fail the run; record-level problems are collected in
// the report. On failure the returned report has State == StateFailed and
// no accepted records.
func (p *Pipeline) Run(ctx context.Context, source Source) (*Report, error) {
	return p.RunWithID(ctx, uuid.NewString(), source)
}

// RunWithID is Run with a caller-chosen import identifier.
func (p *Pipeline) RunWithID(ctx context.Context, importID string, source Source) (*Report, error) {
	report := &Report{
		ImportID:  importID,
		Origin:    source.Origin(),
		State:     StateIdle,
		Strict:    p.strict,
		StartedAt: p.now(),
	}

	p.transition(report, StateReading)
	batch, err := source.Read(ctx)
	if err != nil {
		p.transition(report, StateFailed)
		report.CompletedAt = p.now()
		return report, err
	}

	report.RecordsRead = len(batch.Records)
	report.Retrieved = len(batch.Records)
	report.TotalAvailable = batch.TotalAvailable
	report.Warnings = append(report.Warnings, batch.Warnings...)

	p.transition(report, StateResolving)
	resolved := p.resolve(report, batch.Records)

	p.transition(report, StateConsolidating)
	for _, r := range resolved {
		p.consolidator.Apply(r)
	}

	p.transition(report, StateMerging)
	report.Accepted, report.ReassignedIDs = p.merger.Merge(resolved)

	p.transition(report, StateCompleted)
	report.CompletedAt = p.now()
	return report, nil
}

// ResolveOne runs a single record through resolution, consolidation and ID
// assignment. Used by the single-record add path.
func (p *Pipeline) ResolveOne(rec RawRecord) (entities.CatalogBook, []CoercionIssue, error) {
	r, issues, ok := p.resolver.Resolve(0, rec)
	if !ok {
		return entities.CatalogBook{}, nil, ErrMissingTitle
	}
	p.consolidator.Apply(r)
	books, _ := p.merger.Merge([]*Resolved{r})
	return books[0], issues, nil
}

func (p *Pipeline) resolve(report *Report, records []RawRecord) []*Resolved {
	resolved := make([]*Resolved, 0, len(records))
	for i, rec := range records {
		r, issues, ok := p.resolver.Resolve(i, rec)
		if !ok {
			report.Rejected++
			report.Rejections = append(report.Rejections, Rejection{Index: i, Reason: RejectMissingTitle})
			continue
		}
		report.CoercionIssues = append(report.CoercionIssues, issues...)
		resolved = append(resolved, r)
	}
	return resolved
}

func (p *Pipeline) transition(report *Report, to State) {
	from := report.State
	report.State = to
	if p.onTransition != nil {
		p.onTransition(report.ImportID, from, to)
	}
}
