package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplierProtocol identifies the transport a supplier exposes
type SupplierProtocol string

const (
	ProtocolPromoStandards SupplierProtocol = "PROMOSTANDARDS"
	ProtocolREST           SupplierProtocol = "REST"
)

// ConnectionStatus represents the status of a supplier connection
type ConnectionStatus string

const (
	ConnectionPending      ConnectionStatus = "PENDING"
	ConnectionConnected    ConnectionStatus = "CONNECTED"
	ConnectionDisconnected ConnectionStatus = "DISCONNECTED"
	ConnectionError        ConnectionStatus = "ERROR"
)

// SupplierConnection represents a configured connection to one external
// apparel supplier. A supplier may carry both a SOAP (primary) and a REST
// (fallback) endpoint set; live product lookups try SOAP first.
type SupplierConnection struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SupplierCode string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_supplier_connections_code" json:"supplierCode"`
	DisplayName  string    `gorm:"type:varchar(255);not null" json:"displayName"`

	// Connection Status
	Status    ConnectionStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_supplier_connections_status" json:"status"`
	IsEnabled bool             `gorm:"default:true" json:"isEnabled"`

	// SOAP (PromoStandards) endpoints; empty when the supplier has no SOAP contract
	SoapProductURL   string `gorm:"type:varchar(500)" json:"soapProductUrl,omitempty"`
	SoapInventoryURL string `gorm:"type:varchar(500)" json:"soapInventoryUrl,omitempty"`

	// REST fallback endpoint
	RestBaseURL string `gorm:"type:varchar(500)" json:"restBaseUrl,omitempty"`

	// Credentials. The upstream service contracts require plaintext
	// id/password in the SOAP body and Basic auth on REST.
	AccountID string `gorm:"type:varchar(255)" json:"-"`
	APIKey    string `gorm:"type:varchar(500)" json:"-"`

	// Configuration (non-sensitive)
	Config JSONB `gorm:"type:jsonb;default:'{}'" json:"config,omitempty"`

	// Metadata
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
	LastError  string     `gorm:"type:text" json:"lastError,omitempty"`
	ErrorCount int        `gorm:"default:0" json:"errorCount"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"createdBy,omitempty"`

	// Relationships
	SyncJobs []SupplierSyncJob `gorm:"foreignKey:ConnectionID" json:"syncJobs,omitempty"`
}

// TableName specifies the table name for SupplierConnection
func (SupplierConnection) TableName() string {
	return "supplier_connections"
}

// HasSoap reports whether the supplier exposes a PromoStandards endpoint
func (c *SupplierConnection) HasSoap() bool {
	return c.SoapProductURL != ""
}

// HasRest reports whether the supplier exposes a REST fallback endpoint
func (c *SupplierConnection) HasRest() bool {
	return c.RestBaseURL != ""
}
