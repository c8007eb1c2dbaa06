package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

// MemoryStore keeps records in maps and is safe for concurrent use. Values are
// copied on the way in and out so callers never share state with the store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[string]models.Property
	tenants    map[string]models.Tenant
	leases     map[string]models.Lease
	payments   map[string]models.Payment
	paymentSeq []string // payment ids in insertion order
	receipts   map[string]models.Receipt
	requests   map[string]models.MaintenanceRequest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[string]models.Property),
		tenants:    make(map[string]models.Tenant),
		leases:     make(map[string]models.Lease),
		payments:   make(map[string]models.Payment),
		receipts:   make(map[string]models.Receipt),
		requests:   make(map[string]models.MaintenanceRequest),
	}
}

func duplicate(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrConflict)
}

func sortedValues[T any](m map[string]T) []*T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		out = append(out, &v)
	}
	return out
}

func (m *MemoryStore) CreateProperty(p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[p.ID]; ok {
		return duplicate("property", p.ID)
	}
	m.properties[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetProperty(id string) (*models.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.properties[id]
	if !ok {
		return nil, notFound("property", id)
	}
	return &p, nil
}

func (m *MemoryStore) UpdateProperty(p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[p.ID]; !ok {
		return notFound("property", p.ID)
	}
	m.properties[p.ID] = *p
	return nil
}

func (m *MemoryStore) DeleteProperty(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[id]; !ok {
		return notFound("property", id)
	}
	delete(m.properties, id)
	return nil
}

func (m *MemoryStore) GetAllProperties() ([]*models.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.properties), nil
}

func (m *MemoryStore) CreateTenant(t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[t.ID]; ok {
		return duplicate("tenant", t.ID)
	}
	m.tenants[t.ID] = *t
	return nil
}

func (m *MemoryStore) GetTenant(id string) (*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, notFound("tenant", id)
	}
	return &t, nil
}

func (m *MemoryStore) UpdateTenant(t *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[t.ID]; !ok {
		return notFound("tenant", t.ID)
	}
	m.tenants[t.ID] = *t
	return nil
}

// DeleteTenant removes the tenant together with their leases, payments and
// receipts, matching SQLiteStore.
func (m *MemoryStore) DeleteTenant(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tenants[id]; !ok {
		return notFound("tenant", id)
	}

	for leaseID, l := range m.leases {
		if l.TenantID == id {
			delete(m.leases, leaseID)
		}
	}
	kept := m.paymentSeq[:0]
	for _, paymentID := range m.paymentSeq {
		if m.payments[paymentID].TenantID != id {
			kept = append(kept, paymentID)
			continue
		}
		delete(m.payments, paymentID)
		for receiptID, r := range m.receipts {
			if r.PaymentID == paymentID {
				delete(m.receipts, receiptID)
			}
		}
	}
	m.paymentSeq = kept
	delete(m.tenants, id)
	return nil
}

func (m *MemoryStore) GetAllTenants() ([]*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.tenants), nil
}

func (m *MemoryStore) CreateLease(l *models.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leases[l.ID]; ok {
		return duplicate("lease", l.ID)
	}
	if _, ok := m.tenants[l.TenantID]; !ok {
		return fmt.Errorf("failed to create lease: %w", notFound("tenant", l.TenantID))
	}
	m.leases[l.ID] = *l
	return nil
}

func (m *MemoryStore) GetLease(id string) (*models.Lease, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leases[id]
	if !ok {
		return nil, notFound("lease", id)
	}
	return &l, nil
}

func (m *MemoryStore) UpdateLease(l *models.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leases[l.ID]; !ok {
		return notFound("lease", l.ID)
	}
	m.leases[l.ID] = *l
	return nil
}

func (m *MemoryStore) DeleteLease(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leases[id]; !ok {
		return notFound("lease", id)
	}
	delete(m.leases, id)
	return nil
}

func (m *MemoryStore) GetAllLeases() ([]*models.Lease, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.leases), nil
}

// RecordPayment checks every constraint before storing anything, so a
// rejected call leaves the store untouched.
func (m *MemoryStore) RecordPayment(p *models.Payment, r *models.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; ok {
		return duplicate("payment", p.ID)
	}
	if _, ok := m.receipts[r.ID]; ok {
		return duplicate("receipt", r.ID)
	}
	if _, ok := m.tenants[p.TenantID]; !ok {
		return fmt.Errorf("failed to create payment: %w", notFound("tenant", p.TenantID))
	}
	if r.PaymentID != p.ID {
		return fmt.Errorf("receipt %s belongs to payment %s, not %s", r.ID, r.PaymentID, p.ID)
	}
	m.payments[p.ID] = *p
	m.paymentSeq = append(m.paymentSeq, p.ID)
	m.receipts[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetPayment(id string) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, notFound("payment", id)
	}
	return &p, nil
}

func (m *MemoryStore) GetAllPayments() ([]*models.Payment, error) {
	return m.listPayments(func(models.Payment) bool { return true }), nil
}

func (m *MemoryStore) GetPaymentsForTenant(tenantID string) ([]*models.Payment, error) {
	return m.listPayments(func(p models.Payment) bool { return p.TenantID == tenantID }), nil
}

func (m *MemoryStore) listPayments(keep func(models.Payment) bool) []*models.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Payment, 0, len(m.paymentSeq))
	for _, id := range m.paymentSeq {
		p := m.payments[id]
		if keep(p) {
			out = append(out, &p)
		}
	}
	return out
}

func (m *MemoryStore) GetReceipt(id string) (*models.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.receipts[id]
	if !ok {
		return nil, notFound("receipt", id)
	}
	return &r, nil
}

func (m *MemoryStore) GetReceiptForPayment(paymentID string) (*models.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.receipts {
		if r.PaymentID == paymentID {
			return &r, nil
		}
	}
	return nil, notFound("receipt", paymentID)
}

func (m *MemoryStore) CreateMaintenanceRequest(r *models.MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; ok {
		return duplicate("maintenance request", r.ID)
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetMaintenanceRequest(id string) (*models.MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, notFound("maintenance request", id)
	}
	return &r, nil
}

func (m *MemoryStore) UpdateMaintenanceRequest(r *models.MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		return notFound("maintenance request", r.ID)
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *MemoryStore) DeleteMaintenanceRequest(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return notFound("maintenance request", id)
	}
	delete(m.requests, id)
	return nil
}

// GetAllMaintenanceRequests returns requests newest first, matching SQLiteStore.
func (m *MemoryStore) GetAllMaintenanceRequests() ([]*models.MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedValues(m.requests)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateReported.After(out[j].DateReported)
	})
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
