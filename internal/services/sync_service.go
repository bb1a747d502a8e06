package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"supplier-sync-service/internal/clients"
	"supplier-sync-service/internal/clients/promostandards"
	"supplier-sync-service/internal/clients/restapi"
	"supplier-sync-service/internal/config"
	"supplier-sync-service/internal/models"
	"supplier-sync-service/internal/repository"
)

// SyncService runs live catalog syncs against supplier APIs. Pagination is
// strictly sequential: one page is fetched, its cursor extracted, and only
// then is the next page requested.
type SyncService struct {
	syncRepo       *repository.SyncRepository
	connectionRepo *repository.ConnectionRepository
	productRepo    *repository.ProductRepository
	inventoryRepo  *repository.InventoryRepository
	config         *config.Config
	log            *logrus.Entry
	activeJobs     map[uuid.UUID]context.CancelFunc
	mu             sync.RWMutex
}

// NewSyncService creates a new sync service
func NewSyncService(
	syncRepo *repository.SyncRepository,
	connectionRepo *repository.ConnectionRepository,
	productRepo *repository.ProductRepository,
	inventoryRepo *repository.InventoryRepository,
	cfg *config.Config,
	log *logrus.Entry,
) *SyncService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SyncService{
		syncRepo:       syncRepo,
		connectionRepo: connectionRepo,
		productRepo:    productRepo,
		inventoryRepo:  inventoryRepo,
		config:         cfg,
		log:            log,
		activeJobs:     make(map[uuid.UUID]context.CancelFunc),
	}
}

// CreateJobRequest contains the data for creating a new live sync job
type CreateJobRequest struct {
	ConnectionID uuid.UUID          `json:"connectionId"`
	TriggeredBy  models.TriggerType `json:"triggeredBy,omitempty"`
	CreatedBy    string             `json:"createdBy,omitempty"`

	// MaxPages caps pagination for bounded test runs, 0 means unlimited
	MaxPages int `json:"maxPages,omitempty"`
}

// CreateJob creates and starts a live sync job for one supplier connection
func (s *SyncService) CreateJob(ctx context.Context, req *CreateJobRequest) (*models.SupplierSyncJob, error) {
	connection, err := s.connectionRepo.GetByID(ctx, req.ConnectionID)
	if err != nil {
		return nil, fmt.Errorf("connection not found: %w", err)
	}
	if !connection.IsEnabled {
		return nil, fmt.Errorf("supplier connection %s is disabled", connection.SupplierCode)
	}

	// one active sync per connection in this process; cross-process
	// coordination belongs to the external scheduler
	runningJobs, err := s.syncRepo.GetRunningJobs(ctx, req.ConnectionID)
	if err != nil {
		return nil, err
	}
	if len(runningJobs) > 0 {
		return nil, fmt.Errorf("a sync job is already running for this connection")
	}

	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = models.TriggerManual
	}

	now := time.Now()
	job := &models.SupplierSyncJob{
		ID:           uuid.New(),
		ConnectionID: req.ConnectionID,
		JobType:      models.JobTypeLiveSync,
		Status:       models.SyncStatusRunning,
		TriggeredBy:  triggeredBy,
		CreatedBy:    req.CreatedBy,
		StartedAt:    &now,
	}
	job.SetProgress(&models.SyncProgress{})

	if err := s.syncRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	jobCtx, cancel := context.WithTimeout(context.Background(), s.config.SyncTimeout)
	s.mu.Lock()
	s.activeJobs[job.ID] = cancel
	s.mu.Unlock()

	go s.runLiveSync(jobCtx, job, connection, req.MaxPages)

	return job, nil
}

// GetJob retrieves a sync job by ID
func (s *SyncService) GetJob(ctx context.Context, id uuid.UUID) (*models.SupplierSyncJob, error) {
	return s.syncRepo.GetJobByID(ctx, id)
}

// ListJobs lists sync jobs
func (s *SyncService) ListJobs(ctx context.Context, opts *repository.SyncListOptions) ([]models.SupplierSyncJob, int64, error) {
	if opts == nil {
		opts = &repository.SyncListOptions{}
	}
	return s.syncRepo.ListJobs(ctx, *opts)
}

// CancelJob cancels a running sync job
func (s *SyncService) CancelJob(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	cancel, exists := s.activeJobs[id]
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("job not found or not running")
	}

	cancel()
	return s.syncRepo.UpdateJobStatus(ctx, id, models.SyncStatusCancelled, "Cancelled by user")
}

// GetJobLogs retrieves logs for a sync job
func (s *SyncService) GetJobLogs(ctx context.Context, jobID uuid.UUID, opts *repository.LogListOptions) ([]models.SupplierSyncLog, error) {
	if opts == nil {
		opts = &repository.LogListOptions{Limit: 100}
	}
	return s.syncRepo.GetJobLogs(ctx, jobID, *opts)
}

// BuildFallback constructs the primary/secondary client pair for a supplier
// connection. SOAP is primary when present; REST is the fallback or, when the
// supplier has no SOAP contract, the only client.
func (s *SyncService) BuildFallback(connection *models.SupplierConnection) (*clients.Fallback, error) {
	var primary, secondary clients.SupplierClient

	if connection.HasSoap() {
		primary = promostandards.NewClient(promostandards.Config{
			ProductURL:   connection.SoapProductURL,
			InventoryURL: connection.SoapInventoryURL,
			AccountID:    connection.AccountID,
			Password:     connection.APIKey,
		}, s.log.WithField("supplier", connection.SupplierCode))
	}
	if connection.HasRest() {
		secondary = s.restClient(connection)
	}
	if primary == nil && secondary == nil {
		return nil, fmt.Errorf("supplier %s has no configured endpoints", connection.SupplierCode)
	}
	if primary == nil {
		primary, secondary = secondary, nil
	}
	return clients.NewFallback(primary, secondary, s.log.WithField("supplier", connection.SupplierCode)), nil
}

func (s *SyncService) restClient(connection *models.SupplierConnection) *restapi.Client {
	return restapi.NewClient(restapi.Config{
		BaseURL:   connection.RestBaseURL,
		AccountID: connection.AccountID,
		APIKey:    connection.APIKey,
	}, s.log.WithField("supplier", connection.SupplierCode))
}

// runLiveSync walks the supplier's catalog page by page, persisting each
// product and its inventory snapshot
func (s *SyncService) runLiveSync(ctx context.Context, job *models.SupplierSyncJob, connection *models.SupplierConnection, maxPages int) {
	defer func() {
		s.mu.Lock()
		delete(s.activeJobs, job.ID)
		s.mu.Unlock()
	}()

	s.logEvent(ctx, job.ID, models.LogLevelInfo, "Live sync started", nil)

	fallback, err := s.BuildFallback(connection)
	if err != nil {
		s.failJob(ctx, job.ID, connection, err.Error())
		return
	}

	// catalog enumeration needs the REST listing endpoint
	if !connection.HasRest() {
		s.failJob(ctx, job.ID, connection, "supplier has no catalog listing endpoint")
		return
	}
	lister := s.restClient(connection)

	syncErr := s.syncCatalog(ctx, job, connection, fallback, lister, maxPages)
	if syncErr != nil {
		if ctx.Err() != nil {
			_ = s.syncRepo.UpdateJobStatus(context.Background(), job.ID, models.SyncStatusCancelled, "Cancelled")
			s.logEvent(context.Background(), job.ID, models.LogLevelWarn, "Live sync cancelled", nil)
		} else {
			s.failJob(context.Background(), job.ID, connection, syncErr.Error())
		}
		return
	}

	_ = s.syncRepo.UpdateJobStatus(context.Background(), job.ID, models.SyncStatusCompleted, "")
	s.logEvent(context.Background(), job.ID, models.LogLevelInfo, "Live sync completed", nil)

	_ = s.connectionRepo.TouchLastSync(context.Background(), connection.ID)
	_ = s.connectionRepo.UpdateStatus(context.Background(), connection.ID, models.ConnectionConnected, "")
}

func (s *SyncService) syncCatalog(ctx context.Context, job *models.SupplierSyncJob, connection *models.SupplierConnection, fallback *clients.Fallback, lister clients.CatalogLister, maxPages int) error {
	progress := &models.SyncProgress{}
	var cursor string
	pages := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page, err := lister.ListProducts(ctx, &clients.ListOptions{
			Limit:  s.config.SyncBatchSize,
			Cursor: cursor,
		})
		if err != nil {
			return fmt.Errorf("failed to list catalog page: %w", err)
		}
		pages++
		progress.TotalItems += len(page.StyleIDs)

		for _, styleID := range page.StyleIDs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := s.syncProduct(ctx, job, connection, fallback, styleID); err != nil {
				progress.FailedItems++
				s.logEvent(ctx, job.ID, models.LogLevelError, "Failed to sync product", models.JSONB{
					"styleId": styleID,
					"error":   err.Error(),
				})
			} else {
				progress.SuccessfulItems++
			}
			progress.ProcessedItems++
			if progress.TotalItems > 0 {
				progress.Percentage = float64(progress.ProcessedItems) / float64(progress.TotalItems) * 100
			}

			if progress.ProcessedItems%10 == 0 {
				_ = s.syncRepo.UpdateJobProgress(ctx, job.ID, progress)
			}
		}

		if !page.HasMore {
			break
		}
		if maxPages > 0 && pages >= maxPages {
			s.logEvent(ctx, job.ID, models.LogLevelInfo, "Page cap reached, stopping", models.JSONB{"pages": pages})
			break
		}
		cursor = page.NextCursor
	}

	_ = s.syncRepo.UpdateJobProgress(ctx, job.ID, progress)
	s.logEvent(ctx, job.ID, models.LogLevelInfo, "Catalog walk finished", models.JSONB{
		"pages":      pages,
		"total":      progress.TotalItems,
		"successful": progress.SuccessfulItems,
		"failed":     progress.FailedItems,
	})
	return nil
}

// syncProduct fetches one product through the fallback pair and persists it
// together with its inventory snapshot
func (s *SyncService) syncProduct(ctx context.Context, job *models.SupplierSyncJob, connection *models.SupplierConnection, fallback *clients.Fallback, styleID string) error {
	productResult, err := fallback.FetchProduct(ctx, styleID)
	if err != nil {
		return err
	}
	for _, warning := range productResult.Warnings {
		s.logEvent(ctx, job.ID, models.LogLevelWarn, "Primary client failed, served by fallback", models.JSONB{
			"styleId": styleID,
			"warning": warning,
		})
	}

	if err := s.productRepo.ReplaceProduct(ctx, connection.SupplierCode, productResult.Record); err != nil {
		return fmt.Errorf("persist product: %w", err)
	}

	invResult, err := fallback.FetchInventory(ctx, styleID, nil)
	if err != nil {
		// a product without live inventory is still worth keeping
		s.logEvent(ctx, job.ID, models.LogLevelWarn, "Inventory fetch failed", models.JSONB{
			"styleId": styleID,
			"error":   err.Error(),
		})
		return nil
	}
	if err := s.inventoryRepo.ReplaceSnapshot(ctx, connection.SupplierCode, styleID, invResult.Rows); err != nil {
		return fmt.Errorf("persist inventory: %w", err)
	}
	return nil
}

func (s *SyncService) failJob(ctx context.Context, jobID uuid.UUID, connection *models.SupplierConnection, message string) {
	_ = s.syncRepo.UpdateJobStatus(ctx, jobID, models.SyncStatusFailed, message)
	s.logEvent(ctx, jobID, models.LogLevelError, "Sync failed", models.JSONB{"error": message})
	_ = s.connectionRepo.UpdateStatus(ctx, connection.ID, models.ConnectionError, message)
}

func (s *SyncService) logEvent(ctx context.Context, jobID uuid.UUID, level models.LogLevel, message string, data models.JSONB) {
	entry := &models.SupplierSyncLog{
		ID:        uuid.New(),
		SyncJobID: jobID,
		Level:     level,
		Message:   message,
		Data:      data,
	}
	if err := s.syncRepo.CreateLog(ctx, entry); err != nil {
		s.log.WithFields(logrus.Fields{
			"jobId": jobID.String(),
			"error": err.Error(),
		}).Warn("failed to persist sync log")
	}
}
