package store

import (
	"errors"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

var (
	// ErrNotFound is returned (wrapped) when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned (wrapped) when a record with the same id exists.
	ErrConflict = errors.New("already exists")
)

// Storage defines the interface for persisting rental records.
type Storage interface {
	CreateProperty(property *models.Property) error
	GetProperty(id string) (*models.Property, error)
	UpdateProperty(property *models.Property) error
	DeleteProperty(id string) error
	GetAllProperties() ([]*models.Property, error)

	CreateTenant(tenant *models.Tenant) error
	GetTenant(id string) (*models.Tenant, error)
	UpdateTenant(tenant *models.Tenant) error
	DeleteTenant(id string) error
	GetAllTenants() ([]*models.Tenant, error)

	CreateLease(lease *models.Lease) error
	GetLease(id string) (*models.Lease, error)
	UpdateLease(lease *models.Lease) error
	DeleteLease(id string) error
	GetAllLeases() ([]*models.Lease, error)

	// RecordPayment stores a payment together with its receipt. Either both
	// are stored or neither is.
	RecordPayment(payment *models.Payment, receipt *models.Receipt) error
	GetPayment(id string) (*models.Payment, error)
	GetAllPayments() ([]*models.Payment, error)
	GetPaymentsForTenant(tenantID string) ([]*models.Payment, error)

	GetReceipt(id string) (*models.Receipt, error)
	GetReceiptForPayment(paymentID string) (*models.Receipt, error)

	CreateMaintenanceRequest(request *models.MaintenanceRequest) error
	GetMaintenanceRequest(id string) (*models.MaintenanceRequest, error)
	UpdateMaintenanceRequest(request *models.MaintenanceRequest) error
	DeleteMaintenanceRequest(id string) error
	GetAllMaintenanceRequests() ([]*models.MaintenanceRequest, error)

	Close() error
}
