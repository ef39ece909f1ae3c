package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/tasks"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []tasks.WooCommerceImportTask
	err   error
}

func (r *recordingEnqueuer) EnqueueWooCommerceImport(task tasks.WooCommerceImportTask) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.tasks = append(r.tasks, task)
	return "task-1", nil
}

type recordingImporter struct {
	mu    sync.Mutex
	creds []woocommerce.Credentials
}

func (r *recordingImporter) ImportCSV(context.Context, []byte, services.ImportOptions) (*services.ImportOutcome, error) {
	return nil, errors.New("unexpected")
}

func (r *recordingImporter) ImportJSON(context.Context, []byte, services.ImportOptions) (*services.ImportOutcome, error) {
	return nil, errors.New("unexpected")
}

func (r *recordingImporter) ImportWooCommerce(_ context.Context, creds woocommerce.Credentials, _ services.ImportOptions) (*services.ImportOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = append(r.creds, creds)
	return &services.ImportOutcome{Session: &entities.ImportSession{Accepted: 1}}, nil
}

func validConfig() SyncConfig {
	return SyncConfig{
		Enabled:  true,
		Schedule: "0 */6 * * *",
		Credentials: woocommerce.Credentials{
			BaseURL:        "https://shop.example",
			ConsumerKey:    "ck",
			ConsumerSecret: "cs",
		},
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 */6 * * *", true},
		{"invalid", false},
		{"* * * *", false},
		{"60 * * * *", false},
		{"0 25 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2024, 3, 1, 7, 30, 0, 0, time.UTC)

	next, err := NextRunTime("0 */6 * * *", from)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), next)
}

func TestStart(t *testing.T) {
	t.Run("disabled does not start", func(t *testing.T) {
		cfg := validConfig()
		cfg.Enabled = false
		s := NewWooCommerceSyncScheduler(cfg, &recordingImporter{}, nil)

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.NextRun())
	})

	t.Run("missing credentials does not start", func(t *testing.T) {
		cfg := validConfig()
		cfg.Credentials.ConsumerSecret = ""
		s := NewWooCommerceSyncScheduler(cfg, &recordingImporter{}, nil)

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		cfg := validConfig()
		cfg.Schedule = "every day"
		s := NewWooCommerceSyncScheduler(cfg, &recordingImporter{}, nil)

		assert.Error(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("no runner", func(t *testing.T) {
		s := NewWooCommerceSyncScheduler(validConfig(), nil, nil)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("starts and stops", func(t *testing.T) {
		s := NewWooCommerceSyncScheduler(validConfig(), &recordingImporter{}, nil)

		require.NoError(t, s.Start(context.Background()))
		assert.True(t, s.IsRunning())
		assert.NotNil(t, s.NextRun())

		s.Stop()
		assert.False(t, s.IsRunning())
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := NewWooCommerceSyncScheduler(validConfig(), &recordingImporter{}, nil)
		require.NoError(t, s.Start(ctx))

		cancel()

		assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
	})
}

func TestSync(t *testing.T) {
	t.Run("enqueues when a task queue is available", func(t *testing.T) {
		enqueuer := &recordingEnqueuer{}
		importer := &recordingImporter{}
		s := NewWooCommerceSyncScheduler(validConfig(), importer, enqueuer)

		require.NoError(t, s.sync())

		require.Len(t, enqueuer.tasks, 1)
		assert.Equal(t, "https://shop.example", enqueuer.tasks[0].URL)
		assert.Equal(t, "ck", enqueuer.tasks[0].ConsumerKey)
		assert.Equal(t, "schedule", enqueuer.tasks[0].Trigger)
		assert.Empty(t, importer.creds)
	})

	t.Run("enqueue failure", func(t *testing.T) {
		s := NewWooCommerceSyncScheduler(validConfig(), nil, &recordingEnqueuer{err: errors.New("queue closed")})
		assert.Error(t, s.sync())
	})

	t.Run("imports inline without a task queue", func(t *testing.T) {
		importer := &recordingImporter{}
		s := NewWooCommerceSyncScheduler(validConfig(), importer, nil)

		require.NoError(t, s.sync())

		require.Len(t, importer.creds, 1)
		assert.Equal(t, "https://shop.example", importer.creds[0].BaseURL)
	})

	t.Run("run now", func(t *testing.T) {
		importer := &recordingImporter{}
		s := NewWooCommerceSyncScheduler(validConfig(), importer, nil)

		s.RunNow()

		assert.Eventually(t, func() bool {
			importer.mu.Lock()
			defer importer.mu.Unlock()
			return len(importer.creds) == 1
		}, time.Second, 10*time.Millisecond)
	})
}
