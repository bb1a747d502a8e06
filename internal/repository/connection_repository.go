package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"supplier-sync-service/internal/models"
)

// ConnectionRepository handles database operations for supplier connections
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create creates a new supplier connection
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.SupplierConnection) error {
	conn.SupplierCode = strings.ToUpper(strings.TrimSpace(conn.SupplierCode))
	return r.db.WithContext(ctx).Create(conn).Error
}

// GetByID retrieves a supplier connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SupplierConnection, error) {
	var conn models.SupplierConnection
	err := r.db.WithContext(ctx).First(&conn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetBySupplierCode retrieves a supplier connection by its code
func (r *ConnectionRepository) GetBySupplierCode(ctx context.Context, code string) (*models.SupplierConnection, error) {
	var conn models.SupplierConnection
	err := r.db.WithContext(ctx).
		Where("supplier_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// List retrieves supplier connections, optionally only enabled ones
func (r *ConnectionRepository) List(ctx context.Context, enabledOnly bool) ([]models.SupplierConnection, error) {
	var conns []models.SupplierConnection
	query := r.db.WithContext(ctx).Order("supplier_code ASC")
	if enabledOnly {
		query = query.Where("is_enabled = ?", true)
	}
	err := query.Find(&conns).Error
	return conns, err
}

// Update updates a supplier connection
func (r *ConnectionRepository) Update(ctx context.Context, conn *models.SupplierConnection) error {
	return r.db.WithContext(ctx).Save(conn).Error
}

// Delete removes a supplier connection
func (r *ConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SupplierConnection{}, "id = ?", id).Error
}

// UpdateStatus updates connection health bookkeeping
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, lastError string) error {
	updates := map[string]interface{}{
		"status":     status,
		"last_error": lastError,
		"updated_at": time.Now(),
	}
	if status == models.ConnectionError {
		updates["error_count"] = gorm.Expr("error_count + 1")
	} else if status == models.ConnectionConnected {
		updates["error_count"] = 0
	}
	return r.db.WithContext(ctx).
		Model(&models.SupplierConnection{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// TouchLastSync records a successful sync completion time
func (r *ConnectionRepository) TouchLastSync(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.SupplierConnection{}).
		Where("id = ?", id).
		Update("last_sync_at", &now).Error
}
