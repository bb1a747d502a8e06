package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"supplier-sync-service/internal/models"
	"supplier-sync-service/internal/repository"
)

// ConnectionService manages supplier connection configuration
type ConnectionService struct {
	connectionRepo *repository.ConnectionRepository
	syncService    *SyncService
	log            *logrus.Entry
}

// NewConnectionService creates a new connection service
func NewConnectionService(connectionRepo *repository.ConnectionRepository, syncService *SyncService, log *logrus.Entry) *ConnectionService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ConnectionService{
		connectionRepo: connectionRepo,
		syncService:    syncService,
		log:            log,
	}
}

// CreateConnectionRequest contains the data for registering a supplier
type CreateConnectionRequest struct {
	SupplierCode string `json:"supplierCode" binding:"required"`
	DisplayName  string `json:"displayName" binding:"required"`

	SoapProductURL   string `json:"soapProductUrl,omitempty"`
	SoapInventoryURL string `json:"soapInventoryUrl,omitempty"`
	RestBaseURL      string `json:"restBaseUrl,omitempty"`

	AccountID string `json:"accountId,omitempty"`
	APIKey    string `json:"apiKey,omitempty"`

	Config models.JSONB `json:"config,omitempty"`
}

// Create registers a new supplier connection
func (s *ConnectionService) Create(ctx context.Context, req *CreateConnectionRequest) (*models.SupplierConnection, error) {
	if req.SoapProductURL == "" && req.RestBaseURL == "" {
		return nil, fmt.Errorf("at least one of soapProductUrl or restBaseUrl is required")
	}

	conn := &models.SupplierConnection{
		ID:               uuid.New(),
		SupplierCode:     strings.ToUpper(strings.TrimSpace(req.SupplierCode)),
		DisplayName:      req.DisplayName,
		Status:           models.ConnectionPending,
		IsEnabled:        true,
		SoapProductURL:   req.SoapProductURL,
		SoapInventoryURL: req.SoapInventoryURL,
		RestBaseURL:      req.RestBaseURL,
		AccountID:        req.AccountID,
		APIKey:           req.APIKey,
		Config:           req.Config,
	}
	if conn.Config == nil {
		conn.Config = models.JSONB{}
	}

	if err := s.connectionRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	s.log.WithField("supplier", conn.SupplierCode).Info("supplier connection created")
	return conn, nil
}

// Get retrieves a supplier connection by ID
func (s *ConnectionService) Get(ctx context.Context, id uuid.UUID) (*models.SupplierConnection, error) {
	return s.connectionRepo.GetByID(ctx, id)
}

// List retrieves supplier connections
func (s *ConnectionService) List(ctx context.Context, enabledOnly bool) ([]models.SupplierConnection, error) {
	return s.connectionRepo.List(ctx, enabledOnly)
}

// UpdateConnectionRequest contains mutable connection fields; nil pointers
// leave the stored value untouched
type UpdateConnectionRequest struct {
	DisplayName      *string       `json:"displayName,omitempty"`
	IsEnabled        *bool         `json:"isEnabled,omitempty"`
	SoapProductURL   *string       `json:"soapProductUrl,omitempty"`
	SoapInventoryURL *string       `json:"soapInventoryUrl,omitempty"`
	RestBaseURL      *string       `json:"restBaseUrl,omitempty"`
	AccountID        *string       `json:"accountId,omitempty"`
	APIKey           *string       `json:"apiKey,omitempty"`
	Config           *models.JSONB `json:"config,omitempty"`
}

// Update patches a supplier connection
func (s *ConnectionService) Update(ctx context.Context, id uuid.UUID, req *UpdateConnectionRequest) (*models.SupplierConnection, error) {
	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		conn.DisplayName = *req.DisplayName
	}
	if req.IsEnabled != nil {
		conn.IsEnabled = *req.IsEnabled
	}
	if req.SoapProductURL != nil {
		conn.SoapProductURL = *req.SoapProductURL
	}
	if req.SoapInventoryURL != nil {
		conn.SoapInventoryURL = *req.SoapInventoryURL
	}
	if req.RestBaseURL != nil {
		conn.RestBaseURL = *req.RestBaseURL
	}
	if req.AccountID != nil {
		conn.AccountID = *req.AccountID
	}
	if req.APIKey != nil {
		conn.APIKey = *req.APIKey
	}
	if req.Config != nil {
		conn.Config = *req.Config
	}

	if err := s.connectionRepo.Update(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	return conn, nil
}

// Delete removes a supplier connection
func (s *ConnectionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.connectionRepo.Delete(ctx, id)
}

// TestConnection performs a live probe against the supplier using a known
// style when one is configured, falling back to a catalog page fetch
func (s *ConnectionService) TestConnection(ctx context.Context, id uuid.UUID) error {
	conn, err := s.connectionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	fallback, err := s.syncService.BuildFallback(conn)
	if err != nil {
		_ = s.connectionRepo.UpdateStatus(ctx, conn.ID, models.ConnectionError, err.Error())
		return err
	}

	probeStyle, _ := conn.Config["testStyle"].(string)
	if probeStyle != "" {
		_, err = fallback.FetchProduct(ctx, probeStyle)
	} else if conn.HasRest() {
		_, err = s.syncService.restClient(conn).ListProducts(ctx, nil)
	} else {
		return fmt.Errorf("supplier %s has no testStyle configured for a SOAP probe", conn.SupplierCode)
	}

	if err != nil {
		_ = s.connectionRepo.UpdateStatus(ctx, conn.ID, models.ConnectionError, err.Error())
		return err
	}
	return s.connectionRepo.UpdateStatus(ctx, conn.ID, models.ConnectionConnected, "")
}
