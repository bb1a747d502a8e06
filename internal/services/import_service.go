package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"supplier-sync-service/internal/config"
	"supplier-sync-service/internal/importer"
	"supplier-sync-service/internal/models"
	"supplier-sync-service/internal/repository"
	"supplier-sync-service/internal/transfer"
)

// ImportService runs the bulk CSV importers against local or FTP-delivered
// files and records each run as a sync job. Dry runs write nothing at all,
// not even a job row.
type ImportService struct {
	syncRepo       *repository.SyncRepository
	connectionRepo *repository.ConnectionRepository
	catalog        *importer.CatalogImporter
	enrichment     *importer.EnrichmentImporter
	config         *config.Config
	log            *logrus.Entry
}

// NewImportService creates a new import service
func NewImportService(
	syncRepo *repository.SyncRepository,
	connectionRepo *repository.ConnectionRepository,
	productRepo *repository.ProductRepository,
	cfg *config.Config,
	log *logrus.Entry,
) *ImportService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ImportService{
		syncRepo:       syncRepo,
		connectionRepo: connectionRepo,
		catalog:        importer.NewCatalogImporter(productRepo, log),
		enrichment:     importer.NewEnrichmentImporter(productRepo, log),
		config:         cfg,
		log:            log,
	}
}

// ImportRequest describes one bulk import invocation
type ImportRequest struct {
	ConnectionID uuid.UUID `json:"connectionId"`

	// FilePath is a local CSV path. When RemoteFile is set instead, the file
	// is first fetched from the supplier's FTP drop.
	FilePath   string `json:"filePath,omitempty"`
	RemoteFile string `json:"remoteFile,omitempty"`

	DryRun bool     `json:"dryRun,omitempty"`
	Limit  int      `json:"limit,omitempty"`
	Styles []string `json:"styles,omitempty"`
	Latin1 bool     `json:"latin1,omitempty"`
}

// RunCatalogImport runs the primary SDL catalog importer
func (s *ImportService) RunCatalogImport(ctx context.Context, req *ImportRequest) (*importer.Result, error) {
	return s.run(ctx, req, models.JobTypeCatalogImport)
}

// RunEnrichmentImport runs the secondary EPDD enrichment importer. The
// catalog import must have run first; styles it never created are reported
// missing, not created.
func (s *ImportService) RunEnrichmentImport(ctx context.Context, req *ImportRequest) (*importer.Result, error) {
	return s.run(ctx, req, models.JobTypeEnrichmentImport)
}

func (s *ImportService) run(ctx context.Context, req *ImportRequest, jobType models.JobType) (*importer.Result, error) {
	connection, err := s.connectionRepo.GetByID(ctx, req.ConnectionID)
	if err != nil {
		return nil, fmt.Errorf("connection not found: %w", err)
	}

	path := req.FilePath
	if path == "" && req.RemoteFile != "" {
		path, err = s.fetchRemote(ctx, connection, req.RemoteFile)
		if err != nil {
			return nil, err
		}
	}
	if path == "" {
		return nil, fmt.Errorf("either filePath or remoteFile is required")
	}

	opts := importer.Options{
		SupplierCode: connection.SupplierCode,
		DryRun:       req.DryRun,
		Limit:        req.Limit,
		Styles:       req.Styles,
		Latin1:       req.Latin1,
	}

	var job *models.SupplierSyncJob
	if !req.DryRun {
		now := time.Now()
		job = &models.SupplierSyncJob{
			ID:           uuid.New(),
			ConnectionID: connection.ID,
			JobType:      jobType,
			Status:       models.SyncStatusRunning,
			TriggeredBy:  models.TriggerManual,
			StartedAt:    &now,
		}
		job.SetProgress(&models.SyncProgress{})
		if err := s.syncRepo.CreateJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create job: %w", err)
		}
	}

	var result *importer.Result
	if jobType == models.JobTypeCatalogImport {
		result, err = s.catalog.ImportFile(ctx, path, opts)
	} else {
		result, err = s.enrichment.ImportFile(ctx, path, opts)
	}

	if job != nil {
		if err != nil {
			_ = s.syncRepo.UpdateJobStatus(ctx, job.ID, models.SyncStatusFailed, err.Error())
		} else {
			_ = s.syncRepo.UpdateJobResult(ctx, job.ID, importResultJSON(result))
			_ = s.syncRepo.UpdateJobStatus(ctx, job.ID, models.SyncStatusCompleted, "")
			_ = s.connectionRepo.TouchLastSync(ctx, connection.ID)
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"supplier":  connection.SupplierCode,
		"jobType":   string(jobType),
		"dryRun":    result.DryRun,
		"rows":      result.RowsScanned,
		"persisted": result.ProductsPersisted,
		"failed":    result.ProductsFailed,
	}).Info("bulk import finished")
	return result, nil
}

// fetchRemote pulls the bulk file from the supplier's FTP drop using the
// connection's transfer settings stored in Config
func (s *ImportService) fetchRemote(ctx context.Context, connection *models.SupplierConnection, remoteFile string) (string, error) {
	host, _ := connection.Config["ftpHost"].(string)
	if host == "" {
		return "", fmt.Errorf("supplier %s has no ftpHost configured", connection.SupplierCode)
	}
	port := 0
	if p, ok := connection.Config["ftpPort"].(float64); ok {
		port = int(p)
	}
	remoteDir, _ := connection.Config["ftpDir"].(string)

	fetcher := transfer.NewFetcher(transfer.Config{
		Host:      host,
		Port:      port,
		User:      connection.AccountID,
		Password:  connection.APIKey,
		RemoteDir: remoteDir,
	}, s.log.WithField("supplier", connection.SupplierCode))

	return fetcher.Fetch(ctx, remoteFile, s.config.ImportWorkDir)
}

func importResultJSON(result *importer.Result) models.JSONB {
	out := models.JSONB{
		"rowsScanned":       result.RowsScanned,
		"rowsSkipped":       result.RowsSkipped,
		"productsParsed":    result.ProductsParsed,
		"productsPersisted": result.ProductsPersisted,
		"productsFailed":    result.ProductsFailed,
	}
	if len(result.MatchedStyles) > 0 {
		out["matchedStyles"] = result.MatchedStyles
	}
	if len(result.MissingStyles) > 0 {
		out["missingStyles"] = result.MissingStyles
	}
	return out
}
