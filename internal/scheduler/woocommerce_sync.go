package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/tasks"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ImportEnqueuer hands a store import to the background task queue.
type ImportEnqueuer interface {
	EnqueueWooCommerceImport(task tasks.WooCommerceImportTask) (string, error)
}

// SyncConfig describes the store to pull and when.
type SyncConfig struct {
	Enabled     bool
	Schedule    string
	Credentials woocommerce.Credentials
}

// WooCommerceSyncScheduler periodically imports the configured store.
// With an enqueuer the import runs on the task queue; without one it runs
// inline through the importer.
type WooCommerceSyncScheduler struct {
	config   SyncConfig
	importer services.Importer
	enqueuer ImportEnqueuer

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
}

// NewWooCommerceSyncScheduler creates a new scheduler instance. Either
// importer or enqueuer may be nil, not both.
func NewWooCommerceSyncScheduler(cfg SyncConfig, importer services.Importer, enqueuer ImportEnqueuer) *WooCommerceSyncScheduler {
	return &WooCommerceSyncScheduler{
		config:   cfg,
		importer: importer,
		enqueuer: enqueuer,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if sync is enabled
func (s *WooCommerceSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("[SCHEDULER] WooCommerce sync: disabled")
		return nil
	}

	if err := s.config.Credentials.Validate(); err != nil {
		log.Printf("[SCHEDULER] WooCommerce sync: %v, skipping", err)
		return nil
	}

	if s.importer == nil && s.enqueuer == nil {
		return fmt.Errorf("woocommerce sync needs an importer or a task queue")
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.config.Schedule, time.Now())
	log.Printf("[SCHEDULER] WooCommerce sync: started with schedule '%s' for %s. Next run: %v",
		s.config.Schedule, s.config.Credentials.BaseURL, nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running sync and stops the scheduler.
func (s *WooCommerceSyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// A running job takes s.mu when it finishes, so wait without holding it.
	<-s.cron.Stop().Done()
	if cancel != nil {
		cancel()
	}

	log.Printf("[SCHEDULER] WooCommerce sync: stopped")
}

// RunNow triggers an immediate sync
func (s *WooCommerceSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active
func (s *WooCommerceSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *WooCommerceSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// NextRun returns when the next sync will occur
func (s *WooCommerceSyncScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *WooCommerceSyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("[SCHEDULER] WooCommerce sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	if err := s.sync(); err != nil {
		log.Printf("[SCHEDULER] WooCommerce sync: %v", err)
	}
}

func (s *WooCommerceSyncScheduler) sync() error {
	creds := s.config.Credentials

	if s.enqueuer != nil {
		taskID, err := s.enqueuer.EnqueueWooCommerceImport(tasks.WooCommerceImportTask{
			URL:            creds.BaseURL,
			ConsumerKey:    creds.ConsumerKey,
			ConsumerSecret: creds.ConsumerSecret,
			Trigger:        "schedule",
		})
		if err != nil {
			return err
		}
		log.Printf("[SCHEDULER] WooCommerce sync: enqueued import task %s", taskID)
		return nil
	}

	log.Printf("[SCHEDULER] WooCommerce sync: importing %s", creds.BaseURL)
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	outcome, err := s.importer.ImportWooCommerce(ctx, creds, services.ImportOptions{})
	if err != nil {
		return fmt.Errorf("import of %s failed: %w", creds.BaseURL, err)
	}

	log.Printf("[SCHEDULER] WooCommerce sync: %d accepted, %d rejected in %v",
		outcome.Session.Accepted, outcome.Session.Rejected, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime returns the first activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
