package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/metrics"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// remoteImportTimeout bounds a shared store import once no caller can cancel it.
const remoteImportTimeout = 30 * time.Minute

// ImportConfig holds the pipeline settings shared by every import.
type ImportConfig struct {
	PlaceholderImage string
	LocaleMarkers    []string
	Strict           bool
}

// ImportOptions tune a single import invocation.
type ImportOptions struct {
	// Strict overrides ImportConfig.Strict when set.
	Strict *bool
	// DryRun runs the pipeline without writing books.
	DryRun bool
	// Label describes the payload (file name, store URL) in the session.
	Label string
}

// ImportOutcome is what a caller gets back from an import.
type ImportOutcome struct {
	Session *entities.ImportSession `json:"session"`
	Report  *catalog.Report         `json:"report"`
}

// ImportService runs the catalog pipeline for bulk imports and persists
// every accepted book with one Create per book.
type ImportService struct {
	store    CatalogStore
	sessions ImportSessionStore
	config   ImportConfig
	remote   RemoteSourceFactory

	metrics  *metrics.Registry
	archiver PayloadArchiver

	// remoteImports collapses concurrent imports of the same store.
	remoteImports singleflight.Group
}

// NewImportService creates a new ImportService.
func NewImportService(store CatalogStore, sessions ImportSessionStore, cfg ImportConfig, remote RemoteSourceFactory) *ImportService {
	return &ImportService{
		store:    store,
		sessions: sessions,
		config:   cfg,
		remote:   remote,
	}
}

// WithMetrics enables prometheus instrumentation.
func (s *ImportService) WithMetrics(reg *metrics.Registry) *ImportService {
	s.metrics = reg
	return s
}

// WithArchiver enables raw payload and report archiving.
func (s *ImportService) WithArchiver(a PayloadArchiver) *ImportService {
	s.archiver = a
	return s
}

// ImportCSV imports delimited text with a header row.
func (s *ImportService) ImportCSV(ctx context.Context, content []byte, opts ImportOptions) (*ImportOutcome, error) {
	s.archiveRaw(content, "csv")
	return s.Run(ctx, catalog.NewDelimitedSource(content), opts)
}

// ImportJSON imports a JSON array of objects or a single object.
func (s *ImportService) ImportJSON(ctx context.Context, content []byte, opts ImportOptions) (*ImportOutcome, error) {
	s.archiveRaw(content, "json")
	return s.Run(ctx, catalog.NewJSONSource(content), opts)
}

// ImportWooCommerce imports every product of a store. Concurrent calls with
// the same store, credentials and options share a single fetch and import.
// The shared run is detached from every caller's context; a caller whose
// context ends stops waiting without cancelling the others.
func (s *ImportService) ImportWooCommerce(ctx context.Context, creds woocommerce.Credentials, opts ImportOptions) (*ImportOutcome, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("%w: remote imports are not configured", catalog.ErrSourceUnreachable)
	}
	if opts.Label == "" {
		opts.Label = creds.BaseURL
	}

	ch := s.remoteImports.DoChan(remoteImportKey(creds, opts.DryRun, s.strict(opts)), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), remoteImportTimeout)
		defer cancel()
		return s.Run(runCtx, s.remote(creds), opts)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Printf("[IMPORT] Joined in-flight import of %s", creds.BaseURL)
		}
		outcome, _ := res.Val.(*ImportOutcome)
		return outcome, res.Err
	}
}

// remoteImportKey identifies interchangeable store imports. The secret is
// hashed so it never sits in the key in clear text.
func remoteImportKey(creds woocommerce.Credentials, dryRun, strict bool) string {
	secret := sha256.Sum256([]byte(creds.ConsumerSecret))
	return fmt.Sprintf("%s|%s|%s|dry=%t|strict=%t",
		strings.TrimRight(strings.ToLower(strings.TrimSpace(creds.BaseURL)), "/"),
		creds.ConsumerKey, hex.EncodeToString(secret[:]), dryRun, strict)
}

// Run executes the pipeline over source and records the session. A read
// failure marks the session failed and is returned alongside the outcome.
func (s *ImportService) Run(ctx context.Context, source catalog.Source, opts ImportOptions) (*ImportOutcome, error) {
	strict := s.strict(opts)
	session := &entities.ImportSession{
		ID:        uuid.NewString(),
		Origin:    string(source.Origin()),
		Source:    opts.Label,
		Status:    entities.ImportStatusRunning,
		DryRun:    opts.DryRun,
		Strict:    strict,
		StartedAt: time.Now(),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to record import session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.InFlight.Inc()
		defer s.metrics.InFlight.Dec()
	}

	pipeline := catalog.NewPipeline(catalog.Options{
		PlaceholderImage: s.config.PlaceholderImage,
		LocaleMarkers:    s.config.LocaleMarkers,
		Strict:           strict,
		OnTransition: func(importID string, from, to catalog.State) {
			log.Printf("[IMPORT] %s: %s -> %s", importID, from, to)
		},
	})

	report, runErr := pipeline.RunWithID(ctx, session.ID, source)
	outcome := &ImportOutcome{Session: session, Report: report}

	if runErr != nil {
		s.finish(session, report, runErr)
		log.Printf("[IMPORT] %s failed: %v", session.ID, runErr)
		return outcome, runErr
	}

	if !opts.DryRun {
		s.persist(session, report)
	}
	s.finish(session, report, nil)

	log.Printf("[IMPORT] %s completed: %d accepted, %d rejected, %d persisted, %d failed to persist",
		session.ID, session.Accepted, session.Rejected, session.Persisted, session.PersistFailed)
	if report.Partial() {
		log.Printf("[IMPORT] %s retrieved %d of %d available records", session.ID, report.Retrieved, report.TotalAvailable)
	}
	return outcome, nil
}

// persist writes accepted books one at a time. A failed write is counted
// and logged; it does not undo earlier writes or stop later ones.
func (s *ImportService) persist(session *entities.ImportSession, report *catalog.Report) {
	for i := range report.Accepted {
		book := &report.Accepted[i]
		if err := s.store.Create(book); err != nil {
			session.PersistFailed++
			log.Printf("[IMPORT] %s: failed to save book %s (%s): %v", session.ID, book.ID, book.Title, err)
			if s.metrics != nil {
				s.metrics.PersistFailures.Inc()
			}
			continue
		}
		session.Persisted++
		if s.metrics != nil {
			s.metrics.BooksPersisted.Inc()
		}
	}
}

func (s *ImportService) finish(session *entities.ImportSession, report *catalog.Report, runErr error) {
	now := time.Now()
	session.CompletedAt = &now
	session.Status = entities.ImportStatusCompleted
	if runErr != nil {
		session.Status = entities.ImportStatusFailed
		session.Error = runErr.Error()
	}

	if report != nil {
		session.RecordsRead = report.RecordsRead
		session.Accepted = report.AcceptedCount()
		session.Rejected = report.Rejected
		session.ReassignedIDs = report.ReassignedIDs
		session.TotalAvailable = report.TotalAvailable
		session.Retrieved = report.Retrieved
		if len(report.CoercionIssues) > 0 {
			if data, err := json.Marshal(report.CoercionIssues); err == nil {
				session.CoercionIssues = string(data)
			}
		}
	}

	if err := s.sessions.Update(session); err != nil {
		log.Printf("[IMPORT] %s: failed to update session: %v", session.ID, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveImport(session.Origin, string(session.Status), session.Accepted, session.Rejected,
			len(reportIssues(report)), now.Sub(session.StartedAt))
	}

	if s.archiver != nil && report != nil && (runErr != nil || report.Rejected > 0) {
		if name, err := s.archiver.SaveJSON(report); err != nil {
			log.Printf("[IMPORT] %s: failed to archive report: %v", session.ID, err)
		} else {
			log.Printf("[IMPORT] %s: report archived as %s", session.ID, name)
		}
	}
}

func (s *ImportService) archiveRaw(content []byte, ext string) {
	if s.archiver == nil || len(content) == 0 {
		return
	}
	if _, err := s.archiver.SaveRaw(content, ext); err != nil {
		log.Printf("[IMPORT] Failed to archive upload: %v", err)
	}
}

func (s *ImportService) strict(opts ImportOptions) bool {
	if opts.Strict != nil {
		return *opts.Strict
	}
	return s.config.Strict
}

// GetImport returns one import session or ErrImportNotFound.
func (s *ImportService) GetImport(id string) (*entities.ImportSession, error) {
	session, err := s.sessions.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import %s: %w", id, err)
	}
	return session, nil
}

// ListImports returns recent import sessions, newest first.
func (s *ImportService) ListImports(limit, offset int) ([]entities.ImportSession, int64, error) {
	return s.sessions.List(limit, offset)
}

func reportIssues(report *catalog.Report) []catalog.CoercionIssue {
	if report == nil {
		return nil
	}
	return report.CoercionIssues
}

// Compile-time interface check
var _ Importer = (*ImportService)(nil)
