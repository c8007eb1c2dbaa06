package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

// connParams are applied by the driver to every pooled connection.
const connParams = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

// dsn turns a file path into a URI carrying connParams. A PRAGMA run through
// db.Exec would only reach one connection of the pool.
func dsn(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + connParams
}

// initSchema creates the tables if they don't already exist.
// Money columns are TEXT so decimals keep their precision.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		units INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		year_built INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		property_id TEXT NOT NULL,
		unit_number TEXT NOT NULL DEFAULT '',
		lease_start DATETIME NOT NULL,
		lease_end DATETIME NOT NULL,
		rent_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS leases (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		unit_number TEXT NOT NULL DEFAULT '',
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		rent_amount TEXT NOT NULL DEFAULT '0',
		security_deposit TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		terms TEXT NOT NULL DEFAULT '',
		FOREIGN KEY(tenant_id) REFERENCES tenants(id)
	);
	CREATE TABLE IF NOT EXISTS payments (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		tenant_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		date DATETIME NOT NULL,
		method TEXT NOT NULL,
		reference_number TEXT NOT NULL DEFAULT '',
		bank_name TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL DEFAULT '',
		receipt_id TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		FOREIGN KEY(tenant_id) REFERENCES tenants(id)
	);
	CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		payment_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		tenant_name TEXT NOT NULL,
		receipt_number TEXT NOT NULL,
		date DATETIME NOT NULL,
		amount TEXT NOT NULL,
		FOREIGN KEY(payment_id) REFERENCES payments(id)
	);
	CREATE TABLE IF NOT EXISTS maintenance_requests (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date_reported DATETIME NOT NULL,
		status TEXT NOT NULL,
		priority TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_payments_tenant ON payments(tenant_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// writeError maps constraint violations onto ErrConflict and ErrNotFound.
func writeError(action, kind, id string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%s %s: %w", kind, id, ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s %s references a missing record: %w", kind, id, ErrNotFound)
		}
	}
	return fmt.Errorf("failed to %s %s: %w", action, kind, err)
}

// checkAffected turns a zero-row update or delete into ErrNotFound.
func checkAffected(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound(kind, id)
	}
	return nil
}

// --- properties ---

const propertyColumns = `id, name, address, type, units, description, year_built`

func scanProperty(row rowScanner) (*models.Property, error) {
	var p models.Property
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Type, &p.Units, &p.Description, &p.YearBuilt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty inserts a new property.
func (s *SQLiteStore) CreateProperty(p *models.Property) error {
	_, err := s.db.Exec(
		`INSERT INTO properties (`+propertyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Address, p.Type, p.Units, p.Description, p.YearBuilt,
	)
	if err != nil {
		return writeError("create", "property", p.ID, err)
	}
	return nil
}

// GetProperty retrieves a property by its ID.
func (s *SQLiteStore) GetProperty(id string) (*models.Property, error) {
	p, err := scanProperty(s.db.QueryRow(`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("property", id)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) UpdateProperty(p *models.Property) error {
	result, err := s.db.Exec(
		`UPDATE properties SET name = ?, address = ?, type = ?, units = ?, description = ?, year_built = ? WHERE id = ?`,
		p.Name, p.Address, p.Type, p.Units, p.Description, p.YearBuilt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	return checkAffected(result, "property", p.ID)
}

// DeleteProperty removes a property. Payments keep their property id and
// resolve to an unknown property afterwards.
func (s *SQLiteStore) DeleteProperty(id string) error {
	result, err := s.db.Exec(`DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	return checkAffected(result, "property", id)
}

func (s *SQLiteStore) GetAllProperties() ([]*models.Property, error) {
	rows, err := s.db.Query(`SELECT ` + propertyColumns + ` FROM properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all properties: %w", err)
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

// --- tenants ---

const tenantColumns = `id, first_name, last_name, email, phone, property_id, unit_number, lease_start, lease_end, rent_amount, status`

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var t models.Tenant
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.Phone, &t.PropertyID, &t.UnitNumber, &t.LeaseStart, &t.LeaseEnd, &t.RentAmount, &t.Status); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) CreateTenant(t *models.Tenant) error {
	_, err := s.db.Exec(
		`INSERT INTO tenants (`+tenantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FirstName, t.LastName, t.Email, t.Phone, t.PropertyID, t.UnitNumber, t.LeaseStart, t.LeaseEnd, t.RentAmount, t.Status,
	)
	if err != nil {
		return writeError("create", "tenant", t.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetTenant(id string) (*models.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("tenant", id)
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateTenant(t *models.Tenant) error {
	result, err := s.db.Exec(
		`UPDATE tenants SET first_name = ?, last_name = ?, email = ?, phone = ?, property_id = ?, unit_number = ?, lease_start = ?, lease_end = ?, rent_amount = ?, status = ? WHERE id = ?`,
		t.FirstName, t.LastName, t.Email, t.Phone, t.PropertyID, t.UnitNumber, t.LeaseStart, t.LeaseEnd, t.RentAmount, t.Status, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return checkAffected(result, "tenant", t.ID)
}

// DeleteTenant removes a tenant with their leases, payments and receipts
// within a transaction.
func (s *SQLiteStore) DeleteTenant(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cleanup := []struct{ what, query string }{
		{"receipts", `DELETE FROM receipts WHERE payment_id IN (SELECT id FROM payments WHERE tenant_id = ?)`},
		{"payments", `DELETE FROM payments WHERE tenant_id = ?`},
		{"leases", `DELETE FROM leases WHERE tenant_id = ?`},
	}
	for _, c := range cleanup {
		if _, err := tx.Exec(c.query, id); err != nil {
			return fmt.Errorf("failed to delete associated %s: %w", c.what, err)
		}
	}

	result, err := tx.Exec(`DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if err := checkAffected(result, "tenant", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetAllTenants() ([]*models.Tenant, error) {
	rows, err := s.db.Query(`SELECT ` + tenantColumns + ` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all tenants: %w", err)
	}
	defer rows.Close()

	var out []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

// --- leases ---

const leaseColumns = `id, tenant_id, property_id, unit_number, start_date, end_date, rent_amount, security_deposit, status, terms`

func scanLease(row rowScanner) (*models.Lease, error) {
	var l models.Lease
	if err := row.Scan(&l.ID, &l.TenantID, &l.PropertyID, &l.UnitNumber, &l.StartDate, &l.EndDate, &l.RentAmount, &l.SecurityDeposit, &l.Status, &l.Terms); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *SQLiteStore) CreateLease(l *models.Lease) error {
	_, err := s.db.Exec(
		`INSERT INTO leases (`+leaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.TenantID, l.PropertyID, l.UnitNumber, l.StartDate, l.EndDate, l.RentAmount, l.SecurityDeposit, l.Status, l.Terms,
	)
	if err != nil {
		return writeError("create", "lease", l.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetLease(id string) (*models.Lease, error) {
	l, err := scanLease(s.db.QueryRow(`SELECT `+leaseColumns+` FROM leases WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("lease", id)
		}
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) UpdateLease(l *models.Lease) error {
	result, err := s.db.Exec(
		`UPDATE leases SET tenant_id = ?, property_id = ?, unit_number = ?, start_date = ?, end_date = ?, rent_amount = ?, security_deposit = ?, status = ?, terms = ? WHERE id = ?`,
		l.TenantID, l.PropertyID, l.UnitNumber, l.StartDate, l.EndDate, l.RentAmount, l.SecurityDeposit, l.Status, l.Terms, l.ID,
	)
	if err != nil {
		return writeError("update", "lease", l.ID, err)
	}
	return checkAffected(result, "lease", l.ID)
}

func (s *SQLiteStore) DeleteLease(id string) error {
	result, err := s.db.Exec(`DELETE FROM leases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lease: %w", err)
	}
	return checkAffected(result, "lease", id)
}

func (s *SQLiteStore) GetAllLeases() ([]*models.Lease, error) {
	rows, err := s.db.Query(`SELECT ` + leaseColumns + ` FROM leases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all leases: %w", err)
	}
	defer rows.Close()

	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lease row: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

// --- payments ---

const paymentColumns = `id, tenant_id, property_id, amount, date, method, reference_number, bank_name, account_number, receipt_id, notes`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(&p.ID, &p.TenantID, &p.PropertyID, &p.Amount, &p.Date, &p.Method, &p.ReferenceNumber, &p.BankName, &p.AccountNumber, &p.ReceiptID, &p.Notes); err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordPayment inserts a payment and its receipt in one transaction.
func (s *SQLiteStore) RecordPayment(p *models.Payment, r *models.Receipt) error {
	if r.PaymentID != p.ID {
		return fmt.Errorf("receipt %s belongs to payment %s, not %s", r.ID, r.PaymentID, p.ID)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.PropertyID, p.Amount, p.Date, p.Method, p.ReferenceNumber, p.BankName, p.AccountNumber, p.ReceiptID, p.Notes,
	)
	if err != nil {
		return writeError("create", "payment", p.ID, err)
	}
	_, err = tx.Exec(
		`INSERT INTO receipts (`+receiptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.PaymentID, r.TenantID, r.TenantName, r.ReceiptNumber, r.Date, r.Amount,
	)
	if err != nil {
		return writeError("create", "receipt", r.ID, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetPayment(id string) (*models.Payment, error) {
	p, err := scanPayment(s.db.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("payment", id)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// GetAllPayments returns payments in the order they were recorded.
func (s *SQLiteStore) GetAllPayments() ([]*models.Payment, error) {
	return s.queryPayments(`SELECT `+paymentColumns+` FROM payments ORDER BY seq ASC`)
}

func (s *SQLiteStore) GetPaymentsForTenant(tenantID string) ([]*models.Payment, error) {
	return s.queryPayments(`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = ? ORDER BY seq ASC`, tenantID)
}

func (s *SQLiteStore) queryPayments(query string, args ...any) ([]*models.Payment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for payments: %w", err)
	}
	return out, nil
}

// --- receipts ---

const receiptColumns = `id, payment_id, tenant_id, tenant_name, receipt_number, date, amount`

func scanReceipt(row rowScanner) (*models.Receipt, error) {
	var r models.Receipt
	if err := row.Scan(&r.ID, &r.PaymentID, &r.TenantID, &r.TenantName, &r.ReceiptNumber, &r.Date, &r.Amount); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) GetReceipt(id string) (*models.Receipt, error) {
	return s.getReceipt("id", id)
}

func (s *SQLiteStore) GetReceiptForPayment(paymentID string) (*models.Receipt, error) {
	return s.getReceipt("payment_id", paymentID)
}

func (s *SQLiteStore) getReceipt(column, value string) (*models.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE ` + column + ` = ?`
	r, err := scanReceipt(s.db.QueryRow(query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("receipt", value)
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return r, nil
}

// --- maintenance ---

const maintenanceColumns = `id, property_id, tenant_id, title, description, date_reported, status, priority`

func scanMaintenance(row rowScanner) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	if err := row.Scan(&m.ID, &m.PropertyID, &m.TenantID, &m.Title, &m.Description, &m.DateReported, &m.Status, &m.Priority); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) CreateMaintenanceRequest(m *models.MaintenanceRequest) error {
	_, err := s.db.Exec(
		`INSERT INTO maintenance_requests (`+maintenanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.PropertyID, m.TenantID, m.Title, m.Description, m.DateReported, m.Status, m.Priority,
	)
	if err != nil {
		return writeError("create", "maintenance request", m.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetMaintenanceRequest(id string) (*models.MaintenanceRequest, error) {
	m, err := scanMaintenance(s.db.QueryRow(`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("maintenance request", id)
		}
		return nil, fmt.Errorf("failed to get maintenance request: %w", err)
	}
	return m, nil
}

func (s *SQLiteStore) UpdateMaintenanceRequest(m *models.MaintenanceRequest) error {
	result, err := s.db.Exec(
		`UPDATE maintenance_requests SET property_id = ?, tenant_id = ?, title = ?, description = ?, date_reported = ?, status = ?, priority = ? WHERE id = ?`,
		m.PropertyID, m.TenantID, m.Title, m.Description, m.DateReported, m.Status, m.Priority, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update maintenance request: %w", err)
	}
	return checkAffected(result, "maintenance request", m.ID)
}

func (s *SQLiteStore) DeleteMaintenanceRequest(id string) error {
	result, err := s.db.Exec(`DELETE FROM maintenance_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maintenance request: %w", err)
	}
	return checkAffected(result, "maintenance request", id)
}

// GetAllMaintenanceRequests returns requests newest first.
func (s *SQLiteStore) GetAllMaintenanceRequests() ([]*models.MaintenanceRequest, error) {
	rows, err := s.db.Query(`SELECT ` + maintenanceColumns + ` FROM maintenance_requests ORDER BY date_reported DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance requests: %w", err)
	}
	defer rows.Close()

	var out []*models.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
