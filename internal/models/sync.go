package models

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the kind of work a sync job performs
type JobType string

const (
	JobTypeLiveSync         JobType = "LIVE_SYNC"         // paginated catalog sync over the supplier API
	JobTypeCatalogImport    JobType = "CATALOG_IMPORT"    // bulk SDL CSV import
	JobTypeEnrichmentImport JobType = "ENRICHMENT_IMPORT" // bulk EPDD CSV enrichment
)

// SyncStatus represents the status of a sync job
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "PENDING"
	SyncStatusRunning   SyncStatus = "RUNNING"
	SyncStatusCompleted SyncStatus = "COMPLETED"
	SyncStatusFailed    SyncStatus = "FAILED"
	SyncStatusCancelled SyncStatus = "CANCELLED"
)

// TriggerType represents what triggered the sync
type TriggerType string

const (
	TriggerManual    TriggerType = "MANUAL"
	TriggerScheduled TriggerType = "SCHEDULED"
)

// SyncProgress tracks the progress of a sync job
type SyncProgress struct {
	TotalItems      int     `json:"totalItems"`
	ProcessedItems  int     `json:"processedItems"`
	SuccessfulItems int     `json:"successfulItems"`
	FailedItems     int     `json:"failedItems"`
	SkippedItems    int     `json:"skippedItems"`
	Percentage      float64 `json:"percentage"`
}

// SupplierSyncJob represents one synchronization or import run
type SupplierSyncJob struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;index:idx_supplier_sync_jobs_connection" json:"connectionId"`

	// Job Configuration
	JobType JobType `gorm:"type:varchar(50);not null;default:'LIVE_SYNC'" json:"jobType"`

	// Job Status
	Status SyncStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_supplier_sync_jobs_status" json:"status"`

	// Progress Tracking
	Progress JSONB `gorm:"type:jsonb;default:'{\"totalItems\":0,\"processedItems\":0,\"successfulItems\":0,\"failedItems\":0,\"skippedItems\":0,\"percentage\":0}'" json:"progress"`

	// Import results (matched/missing styles, counts) for bulk jobs
	Result JSONB `gorm:"type:jsonb" json:"result,omitempty"`

	// Timing
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Error tracking
	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`

	// Audit
	TriggeredBy TriggerType `gorm:"type:varchar(50)" json:"triggeredBy,omitempty"`
	CreatedBy   string      `gorm:"type:varchar(255)" json:"createdBy,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// Relationships
	Connection *SupplierConnection `gorm:"foreignKey:ConnectionID" json:"connection,omitempty"`
	Logs       []SupplierSyncLog   `gorm:"foreignKey:SyncJobID" json:"logs,omitempty"`
}

// TableName specifies the table name for SupplierSyncJob
func (SupplierSyncJob) TableName() string {
	return "supplier_sync_jobs"
}

// GetProgress returns the sync progress as a structured object
func (j *SupplierSyncJob) GetProgress() *SyncProgress {
	progress := &SyncProgress{}
	if j.Progress != nil {
		if v, ok := j.Progress["totalItems"].(float64); ok {
			progress.TotalItems = int(v)
		}
		if v, ok := j.Progress["processedItems"].(float64); ok {
			progress.ProcessedItems = int(v)
		}
		if v, ok := j.Progress["successfulItems"].(float64); ok {
			progress.SuccessfulItems = int(v)
		}
		if v, ok := j.Progress["failedItems"].(float64); ok {
			progress.FailedItems = int(v)
		}
		if v, ok := j.Progress["skippedItems"].(float64); ok {
			progress.SkippedItems = int(v)
		}
		if v, ok := j.Progress["percentage"].(float64); ok {
			progress.Percentage = v
		}
	}
	return progress
}

// SetProgress sets the sync progress from a structured object
func (j *SupplierSyncJob) SetProgress(progress *SyncProgress) {
	j.Progress = JSONB{
		"totalItems":      progress.TotalItems,
		"processedItems":  progress.ProcessedItems,
		"successfulItems": progress.SuccessfulItems,
		"failedItems":     progress.FailedItems,
		"skippedItems":    progress.SkippedItems,
		"percentage":      progress.Percentage,
	}
}

// LogLevel represents the severity level of a sync log
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// SupplierSyncLog represents a log entry for a sync job
type SupplierSyncLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SyncJobID uuid.UUID `gorm:"type:uuid;not null;index:idx_supplier_sync_logs_job" json:"syncJobId"`

	Level   LogLevel `gorm:"type:varchar(20);not null;default:'info';index:idx_supplier_sync_logs_level" json:"level"`
	Message string   `gorm:"type:text;not null" json:"message"`
	Data    JSONB    `gorm:"type:jsonb;default:'{}'" json:"data,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for SupplierSyncLog
func (SupplierSyncLog) TableName() string {
	return "supplier_sync_logs"
}
