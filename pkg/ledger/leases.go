package ledger

import (
	"time"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

// DefaultExpiryWindow is how many days ahead a lease counts as expiring.
const DefaultExpiryWindow = 30

// LeaseFilter narrows lease listings. Zero fields do not filter.
// ExpiringWithin keeps active leases ending after today and before today plus
// that many days.
type LeaseFilter struct {
	Status         models.LeaseStatus
	TenantID       string
	PropertyID     string
	ExpiringWithin int
}

// ListLeases returns leases in id order, narrowed by filter.
func (l *Ledger) ListLeases(filter LeaseFilter) ([]models.Lease, error) {
	leases, err := l.GetAllLeases()
	if err != nil {
		return nil, err
	}
	out := FilterLeases(leases, filter.Status, filter.TenantID, filter.PropertyID)
	if filter.ExpiringWithin > 0 {
		out = ExpiringLeases(out, l.now(), filter.ExpiringWithin)
	}
	return out, nil
}

// FilterLeases keeps leases matching every non-empty argument.
func FilterLeases(leases []models.Lease, status models.LeaseStatus, tenantID, propertyID string) []models.Lease {
	out := make([]models.Lease, 0, len(leases))
	for _, lease := range leases {
		if status != "" && lease.Status != status {
			continue
		}
		if tenantID != "" && lease.TenantID != tenantID {
			continue
		}
		if propertyID != "" && lease.PropertyID != propertyID {
			continue
		}
		out = append(out, lease)
	}
	return out
}

// ExpiringLeases keeps active leases whose end date falls strictly between
// today and today plus days, by calendar day.
func ExpiringLeases(leases []models.Lease, today time.Time, days int) []models.Lease {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	limit := start.AddDate(0, 0, days)

	out := make([]models.Lease, 0)
	for _, lease := range leases {
		if lease.Status != models.LeaseStatusActive {
			continue
		}
		ey, em, ed := lease.EndDate.Date()
		end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
		if end.After(start) && end.Before(limit) {
			out = append(out, lease)
		}
	}
	return out
}
