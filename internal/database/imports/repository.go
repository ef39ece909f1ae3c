// Package imports provides database operations for import session history.
//
// # Interface Implementation
//
//	var _ services.ImportSessionStore = (*Repository)(nil)
package imports

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/storefront/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new import session.
func (r *Repository) Create(session *entities.ImportSession) error {
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if session.Status == "" {
		session.Status = entities.ImportStatusPending
	}
	return r.db.Create(session).Error
}

// Update persists every field of an existing session.
func (r *Repository) Update(session *entities.ImportSession) error {
	return r.db.Save(session).Error
}

// GetByID retrieves a single import session.
func (r *Repository) GetByID(id string) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List retrieves paginated sessions, most recent first.
func (r *Repository) List(limit, offset int) ([]entities.ImportSession, int64, error) {
	var sessions []entities.ImportSession
	var total int64

	query := r.db.Model(&entities.ImportSession{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("started_at DESC").Limit(limit).Offset(offset).Find(&sessions).Error
	return sessions, total, err
}

// MarkStaleRunningFailed fails sessions left running by a process that
// stopped before finishing them. Returns the number of sessions updated.
func (r *Repository) MarkStaleRunningFailed(startedBefore time.Time) (int64, error) {
	result := r.db.Model(&entities.ImportSession{}).
		Where("status IN ? AND started_at < ?", []entities.ImportStatus{entities.ImportStatusPending, entities.ImportStatusRunning}, startedBefore).
		Updates(map[string]any{"status": entities.ImportStatusFailed, "error": "interrupted"})
	return result.RowsAffected, result.Error
}
