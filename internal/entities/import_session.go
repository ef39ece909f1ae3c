package entities

import "time"

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportSession is the persisted summary of one bulk import invocation.
type ImportSession struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	Origin         string       `gorm:"index;size:32" json:"origin"`
	Source         string       `gorm:"size:512" json:"source,omitempty"` // file name or store URL
	Status         ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	DryRun         bool         `json:"dry_run"`
	Strict         bool         `json:"strict"`
	RecordsRead    int          `json:"records_read"`
	Accepted       int          `json:"accepted"`
	Rejected       int          `json:"rejected"`
	Persisted      int          `json:"persisted"`
	PersistFailed  int          `json:"persist_failed"`
	ReassignedIDs  int          `json:"reassigned_ids"`
	TotalAvailable int          `json:"total_available"`
	Retrieved      int          `json:"retrieved"`
	CoercionIssues string       `gorm:"type:text" json:"coercion_issues,omitempty"` // JSON array
	Error          string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}

// Partial reports whether a remote fetch retrieved fewer records than the
// remote side advertised.
func (s ImportSession) Partial() bool {
	return s.TotalAvailable > s.Retrieved
}
