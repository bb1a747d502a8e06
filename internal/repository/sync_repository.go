package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"supplier-sync-service/internal/models"
)

// SyncRepository handles database operations for sync jobs
type SyncRepository struct {
	db *gorm.DB
}

// NewSyncRepository creates a new sync repository
func NewSyncRepository(db *gorm.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

// CreateJob creates a new sync job
func (r *SyncRepository) CreateJob(ctx context.Context, job *models.SupplierSyncJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves a sync job by ID
func (r *SyncRepository) GetJobByID(ctx context.Context, id uuid.UUID) (*models.SupplierSyncJob, error) {
	var job models.SupplierSyncJob
	err := r.db.WithContext(ctx).
		Preload("Connection").
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob updates an existing sync job
func (r *SyncRepository) UpdateJob(ctx context.Context, job *models.SupplierSyncJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// UpdateJobStatus updates the job status, stamping completion time for
// terminal states
func (r *SyncRepository) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.SyncStatus, errorMessage string) error {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	}
	if status == models.SyncStatusRunning {
		now := time.Now()
		updates["started_at"] = &now
	}
	if status == models.SyncStatusCompleted || status == models.SyncStatusFailed || status == models.SyncStatusCancelled {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return r.db.WithContext(ctx).
		Model(&models.SupplierSyncJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateJobProgress updates the job progress
func (r *SyncRepository) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress *models.SyncProgress) error {
	progressJSON := models.JSONB{
		"totalItems":      progress.TotalItems,
		"processedItems":  progress.ProcessedItems,
		"successfulItems": progress.SuccessfulItems,
		"failedItems":     progress.FailedItems,
		"skippedItems":    progress.SkippedItems,
		"percentage":      progress.Percentage,
	}
	return r.db.WithContext(ctx).
		Model(&models.SupplierSyncJob{}).
		Where("id = ?", id).
		Update("progress", progressJSON).Error
}

// UpdateJobResult records an import run's summary on the job row
func (r *SyncRepository) UpdateJobResult(ctx context.Context, id uuid.UUID, result models.JSONB) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierSyncJob{}).
		Where("id = ?", id).
		Update("result", result).Error
}

// ListJobs retrieves sync jobs with pagination and filtering
func (r *SyncRepository) ListJobs(ctx context.Context, opts SyncListOptions) ([]models.SupplierSyncJob, int64, error) {
	var jobs []models.SupplierSyncJob
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SupplierSyncJob{})

	if opts.ConnectionID != uuid.Nil {
		query = query.Where("connection_id = ?", opts.ConnectionID)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.JobType != "" {
		query = query.Where("job_type = ?", opts.JobType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	query = query.Order("created_at DESC")
	query = query.Preload("Connection")

	if err := query.Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// GetRunningJobs retrieves active jobs for a connection
func (r *SyncRepository) GetRunningJobs(ctx context.Context, connectionID uuid.UUID) ([]models.SupplierSyncJob, error) {
	var jobs []models.SupplierSyncJob
	err := r.db.WithContext(ctx).
		Where("connection_id = ? AND status IN ?", connectionID, []models.SyncStatus{
			models.SyncStatusPending,
			models.SyncStatusRunning,
		}).
		Find(&jobs).Error
	return jobs, err
}

// CreateLog creates a sync log entry
func (r *SyncRepository) CreateLog(ctx context.Context, log *models.SupplierSyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetJobLogs retrieves logs for a sync job
func (r *SyncRepository) GetJobLogs(ctx context.Context, jobID uuid.UUID, opts LogListOptions) ([]models.SupplierSyncLog, error) {
	var logs []models.SupplierSyncLog
	query := r.db.WithContext(ctx).
		Where("sync_job_id = ?", jobID)

	if opts.Level != "" {
		query = query.Where("level = ?", opts.Level)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// SyncListOptions contains options for listing sync jobs
type SyncListOptions struct {
	ConnectionID uuid.UUID
	Status       string
	JobType      string
	Limit        int
	Offset       int
}

// LogListOptions contains options for listing logs
type LogListOptions struct {
	Level  string
	Limit  int
	Offset int
}
