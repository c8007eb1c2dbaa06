package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

// ErrInvalidMaintenance is returned when a maintenance request is incomplete.
var ErrInvalidMaintenance = errors.New("invalid maintenance request")

// MaintenanceFilter narrows maintenance listings. Zero fields do not filter.
type MaintenanceFilter struct {
	PropertyID string
	TenantID   string
	Status     models.MaintenanceStatus
}

func checkMaintenance(r models.MaintenanceRequest) error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidMaintenance)
	}
	if r.PropertyID == "" {
		return fmt.Errorf("%w: property_id is required", ErrInvalidMaintenance)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMaintenance, r.Status)
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidMaintenance, r.Priority)
	}
	return nil
}

// ReportMaintenance files a new request. It starts pending at medium priority
// and is dated today unless stated.
func (l *Ledger) ReportMaintenance(r models.MaintenanceRequest) (*models.MaintenanceRequest, error) {
	if r.ID == "" {
		r.ID = newID("maint")
	}
	if r.Status == "" {
		r.Status = models.MaintenanceStatusPending
	}
	if r.Priority == "" {
		r.Priority = models.MaintenancePriorityMedium
	}
	if r.DateReported.IsZero() {
		y, m, d := l.now().Date()
		r.DateReported = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if err := checkMaintenance(r); err != nil {
		return nil, err
	}
	if err := l.storage.CreateMaintenanceRequest(&r); err != nil {
		return nil, fmt.Errorf("failed to store maintenance request: %w", err)
	}

	l.log.Info().
		Str("request_id", r.ID).
		Str("property_id", r.PropertyID).
		Str("priority", string(r.Priority)).
		Msg("maintenance reported")
	return &r, nil
}

func (l *Ledger) GetMaintenanceRequest(id string) (*models.MaintenanceRequest, error) {
	return l.storage.GetMaintenanceRequest(id)
}

func (l *Ledger) UpdateMaintenanceRequest(r *models.MaintenanceRequest) error {
	if err := checkMaintenance(*r); err != nil {
		return err
	}
	return l.storage.UpdateMaintenanceRequest(r)
}

func (l *Ledger) DeleteMaintenanceRequest(id string) error {
	return l.storage.DeleteMaintenanceRequest(id)
}

// ListMaintenance returns requests newest first, narrowed by filter.
func (l *Ledger) ListMaintenance(filter MaintenanceFilter) ([]models.MaintenanceRequest, error) {
	all, err := l.storage.GetAllMaintenanceRequests()
	if err != nil {
		return nil, err
	}
	out := make([]models.MaintenanceRequest, 0, len(all))
	for _, r := range all {
		if filter.PropertyID != "" && r.PropertyID != filter.PropertyID {
			continue
		}
		if filter.TenantID != "" && r.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

// PendingMaintenanceCount is the number of requests nobody has started on.
func (l *Ledger) PendingMaintenanceCount() (int, error) {
	pending, err := l.ListMaintenance(MaintenanceFilter{Status: models.MaintenanceStatusPending})
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}
