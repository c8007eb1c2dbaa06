package ledger

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/CodeWithFin/tenant-track-hub/pkg/finance"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/CodeWithFin/tenant-track-hub/pkg/payments"
	"github.com/CodeWithFin/tenant-track-hub/pkg/receipt"
	"github.com/CodeWithFin/tenant-track-hub/pkg/report"
	"github.com/CodeWithFin/tenant-track-hub/pkg/store"
)

// ErrInvalidPayment is returned when a payment cannot be recorded as given.
var ErrInvalidPayment = errors.New("invalid payment")

// Policy holds the landlord's rent rules applied by the ledger.
type Policy struct {
	LateFeePercentage decimal.Decimal
	MaxLateFee        decimal.Decimal // zero means uncapped
	RentDueDay        int             // day of the month rent falls due (1-28)
	RoundTax          bool
}

// DefaultPolicy is a 5% uncapped late fee with rent due on the 1st.
func DefaultPolicy() Policy {
	return Policy{
		LateFeePercentage: decimal.NewFromInt(finance.DefaultLateFeePercentage),
		MaxLateFee:        decimal.Zero,
		RentDueDay:        1,
	}
}

// Ledger handles the business logic for rent records. It loads data from
// storage and hands plain values to the finance, payments and report packages.
type Ledger struct {
	storage  store.Storage
	policy   Policy
	receipts *receipt.Generator
	now      func() time.Time
	log      zerolog.Logger
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage, policy Policy, log zerolog.Logger) *Ledger {
	if policy.RentDueDay < 1 {
		policy.RentDueDay = 1
	}
	return &Ledger{
		storage:  s,
		policy:   policy,
		receipts: receipt.NewGenerator(),
		now:      time.Now,
		log:      log,
	}
}

// Policy returns the rules the ledger applies.
func (l *Ledger) Policy() Policy {
	return l.policy
}

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// PaymentFilter narrows payment listings. Zero fields do not filter.
type PaymentFilter struct {
	From       time.Time
	To         time.Time
	Method     models.PaymentMethod
	PropertyID string
	TenantID   string
}

// PaymentInput is what a caller supplies to record a payment.
type PaymentInput struct {
	TenantID        string
	PropertyID      string // defaults to the tenant's property
	Amount          decimal.Decimal
	Date            time.Time
	Method          models.PaymentMethod
	ReferenceNumber string
	BankName        string
	AccountNumber   string
	Notes           string
}

// LateFeeAssessment explains the late fee owed on one payment.
type LateFeeAssessment struct {
	PaymentID string          `json:"payment_id"`
	DueDate   time.Time       `json:"due_date"`
	PaidOn    time.Time       `json:"paid_on"`
	DaysLate  int             `json:"days_late"`
	Fee       decimal.Decimal `json:"fee"`
}

// CreateProperty stores a new property, assigning an id when none is given.
func (l *Ledger) CreateProperty(p models.Property) (*models.Property, error) {
	if p.ID == "" {
		p.ID = newID("prop")
	}
	if err := l.storage.CreateProperty(&p); err != nil {
		return nil, fmt.Errorf("failed to store property: %w", err)
	}
	return &p, nil
}

func (l *Ledger) GetProperty(id string) (*models.Property, error) {
	return l.storage.GetProperty(id)
}

func (l *Ledger) GetAllProperties() ([]models.Property, error) {
	ps, err := l.storage.GetAllProperties()
	return values(ps), err
}

func (l *Ledger) UpdateProperty(p *models.Property) error {
	return l.storage.UpdateProperty(p)
}

func (l *Ledger) DeleteProperty(id string) error {
	return l.storage.DeleteProperty(id)
}

// CreateTenant stores a new tenant. New tenants are active unless stated.
func (l *Ledger) CreateTenant(t models.Tenant) (*models.Tenant, error) {
	if t.ID == "" {
		t.ID = newID("ten")
	}
	if t.Status == "" {
		t.Status = models.TenantStatusActive
	}
	if err := l.storage.CreateTenant(&t); err != nil {
		return nil, fmt.Errorf("failed to store tenant: %w", err)
	}
	return &t, nil
}

func (l *Ledger) GetTenant(id string) (*models.Tenant, error) {
	return l.storage.GetTenant(id)
}

func (l *Ledger) GetAllTenants() ([]models.Tenant, error) {
	ts, err := l.storage.GetAllTenants()
	return values(ts), err
}

func (l *Ledger) UpdateTenant(t *models.Tenant) error {
	return l.storage.UpdateTenant(t)
}

// DeleteTenant removes a tenant and everything recorded against them.
func (l *Ledger) DeleteTenant(id string) error {
	return l.storage.DeleteTenant(id)
}

func (l *Ledger) CreateLease(lease models.Lease) (*models.Lease, error) {
	if lease.ID == "" {
		lease.ID = newID("lease")
	}
	if lease.Status == "" {
		lease.Status = models.LeaseStatusActive
	}
	if err := l.storage.CreateLease(&lease); err != nil {
		return nil, fmt.Errorf("failed to store lease: %w", err)
	}
	return &lease, nil
}

func (l *Ledger) GetLease(id string) (*models.Lease, error) {
	return l.storage.GetLease(id)
}

func (l *Ledger) GetAllLeases() ([]models.Lease, error) {
	ls, err := l.storage.GetAllLeases()
	return values(ls), err
}

func (l *Ledger) UpdateLease(lease *models.Lease) error {
	return l.storage.UpdateLease(lease)
}

func (l *Ledger) DeleteLease(id string) error {
	return l.storage.DeleteLease(id)
}

// RecordPayment stores a payment and issues its receipt.
func (l *Ledger) RecordPayment(in PaymentInput) (*models.Payment, *models.Receipt, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if !in.Method.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, in.Method)
	}
	if in.Date.IsZero() {
		return nil, nil, fmt.Errorf("%w: date is required", ErrInvalidPayment)
	}

	tenant, err := l.storage.GetTenant(in.TenantID)
	if err != nil {
		return nil, nil, err
	}

	payment := &models.Payment{
		ID:              newID("pay"),
		TenantID:        tenant.ID,
		PropertyID:      in.PropertyID,
		Amount:          in.Amount,
		Date:            in.Date,
		Method:          in.Method,
		ReferenceNumber: in.ReferenceNumber,
		BankName:        in.BankName,
		AccountNumber:   in.AccountNumber,
		Notes:           in.Notes,
	}
	if payment.PropertyID == "" {
		payment.PropertyID = tenant.PropertyID
	}

	rec := l.receipts.New(*payment, *tenant)
	payment.ReceiptID = rec.ID
	if err := l.storage.RecordPayment(payment, &rec); err != nil {
		return nil, nil, fmt.Errorf("failed to store payment: %w", err)
	}

	l.log.Info().
		Str("payment_id", payment.ID).
		Str("tenant_id", payment.TenantID).
		Str("amount", payment.Amount.String()).
		Str("method", string(payment.Method)).
		Str("receipt_number", rec.ReceiptNumber).
		Msg("payment recorded")

	return payment, &rec, nil
}

func (l *Ledger) GetPayment(id string) (*models.Payment, error) {
	return l.storage.GetPayment(id)
}

// ListPayments returns payments in recording order, narrowed by filter.
func (l *Ledger) ListPayments(filter PaymentFilter) ([]models.Payment, error) {
	var (
		ps  []*models.Payment
		err error
	)
	if filter.TenantID != "" {
		ps, err = l.storage.GetPaymentsForTenant(filter.TenantID)
	} else {
		ps, err = l.storage.GetAllPayments()
	}
	if err != nil {
		return nil, err
	}

	records := values(ps)
	if !filter.From.IsZero() || !filter.To.IsZero() {
		from, to := filter.From, filter.To
		if to.IsZero() {
			to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
		}
		records = payments.FilterByTimeRange(records, from, to)
	}
	if filter.Method != "" {
		records = payments.FilterByMethod(records, filter.Method)
	}
	if filter.PropertyID != "" {
		records = payments.FilterByProperty(records, filter.PropertyID)
	}
	return records, nil
}

// DueDate is when rent for the month containing t falls due.
func (l *Ledger) DueDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), l.policy.RentDueDay, 0, 0, 0, 0, t.Location())
}

// LateFeeForPayment checks a payment against the due date of its month and
// the tenant's monthly rent.
func (l *Ledger) LateFeeForPayment(paymentID string) (*LateFeeAssessment, error) {
	p, err := l.storage.GetPayment(paymentID)
	if err != nil {
		return nil, err
	}
	tenant, err := l.storage.GetTenant(p.TenantID)
	if err != nil {
		return nil, err
	}

	due := l.DueDate(p.Date)
	fee := finance.LateFee(finance.LateFeeParams{
		RentAmount:    tenant.RentAmount,
		DueDate:       due,
		PaymentDate:   p.Date,
		FeePercentage: l.policy.LateFeePercentage,
		MaxFee:        l.policy.MaxLateFee,
	})
	return &LateFeeAssessment{
		PaymentID: p.ID,
		DueDate:   due,
		PaidOn:    p.Date,
		DaysLate:  finance.DaysLate(due, p.Date),
		Fee:       fee,
	}, nil
}

// RenewLease projects the lease's rent and contract value after an increase.
func (l *Ledger) RenewLease(leaseID string, increasePercent decimal.Decimal, termMonths int) (*finance.LeaseRenewalResult, error) {
	lease, err := l.storage.GetLease(leaseID)
	if err != nil {
		return nil, err
	}
	res := finance.LeaseRenewal(finance.LeaseRenewalParams{
		RentIncreaseParams: finance.RentIncreaseParams{
			CurrentRent:     lease.RentAmount,
			IncreasePercent: increasePercent,
		},
		TermMonths: termMonths,
	})
	return &res, nil
}

// MoveInCharge is the prorated rent for the first month of a lease.
func (l *Ledger) MoveInCharge(leaseID string) (decimal.Decimal, error) {
	lease, err := l.storage.GetLease(leaseID)
	if err != nil {
		return decimal.Zero, err
	}
	return finance.ProratedRent(finance.ProrationParams{
		MonthlyRent:    lease.RentAmount,
		LeaseStartDate: lease.StartDate,
	}), nil
}

// DepositInterest is the simple interest earned on a lease's security deposit.
func (l *Ledger) DepositInterest(leaseID string, annualRatePercent decimal.Decimal, months int) (decimal.Decimal, error) {
	lease, err := l.storage.GetLease(leaseID)
	if err != nil {
		return decimal.Zero, err
	}
	return finance.DepositInterest(finance.DepositInterestParams{
		DepositAmount:     lease.SecurityDeposit,
		AnnualRatePercent: annualRatePercent,
		TermMonths:        months,
	}), nil
}

// RentalTax applies the policy's rounding choice to a tax computation.
func (l *Ledger) RentalTax(p finance.TaxParams) finance.TaxResult {
	p.RoundTax = p.RoundTax || l.policy.RoundTax
	return finance.RentalTax(p)
}

func (l *Ledger) MonthlyRevenue(filter PaymentFilter) ([]payments.MonthlyAmount, error) {
	records, err := l.ListPayments(filter)
	if err != nil {
		return nil, err
	}
	return payments.MonthlyRevenue(records), nil
}

func (l *Ledger) MethodBreakdown(filter PaymentFilter) ([]payments.MethodShare, error) {
	records, err := l.ListPayments(filter)
	if err != nil {
		return nil, err
	}
	return payments.MethodBreakdown(records), nil
}

// Summary returns collections, vacancy, occupancy and maintenance counts for
// the reports page.
func (l *Ledger) Summary(filter PaymentFilter) (*report.Summary, error) {
	records, err := l.ListPayments(filter)
	if err != nil {
		return nil, err
	}
	properties, err := l.GetAllProperties()
	if err != nil {
		return nil, err
	}
	tenants, err := l.GetAllTenants()
	if err != nil {
		return nil, err
	}
	requests, err := l.storage.GetAllMaintenanceRequests()
	if err != nil {
		return nil, err
	}
	s := report.Summarize(records, properties, tenants, values(requests))
	return &s, nil
}

// ExportRows joins filtered payments with tenant and property names.
func (l *Ledger) ExportRows(filter PaymentFilter) ([]report.ExportRow, error) {
	records, err := l.ListPayments(filter)
	if err != nil {
		return nil, err
	}
	properties, err := l.GetAllProperties()
	if err != nil {
		return nil, err
	}
	tenants, err := l.GetAllTenants()
	if err != nil {
		return nil, err
	}
	return report.ExportRows(records, report.TenantsByID(tenants), report.PropertiesByID(properties)), nil
}

// ExportPayments writes filtered payments as CSV.
func (l *Ledger) ExportPayments(w io.Writer, filter PaymentFilter) error {
	rows, err := l.ExportRows(filter)
	if err != nil {
		return err
	}
	return report.WritePaymentsCSV(w, rows)
}

func (l *Ledger) GetReceipt(id string) (*models.Receipt, error) {
	return l.storage.GetReceipt(id)
}

// ReceiptForPayment returns the receipt issued when a payment was recorded.
func (l *Ledger) ReceiptForPayment(paymentID string) (*models.Receipt, error) {
	if _, err := l.storage.GetPayment(paymentID); err != nil {
		return nil, err
	}
	return l.storage.GetReceiptForPayment(paymentID)
}

// RenderReceipt writes the text form of a stored receipt.
func (l *Ledger) RenderReceipt(w io.Writer, receiptID string) (*models.Receipt, error) {
	rec, err := l.storage.GetReceipt(receiptID)
	if err != nil {
		return nil, err
	}
	p, err := l.storage.GetPayment(rec.PaymentID)
	if err != nil {
		return nil, err
	}
	tenant, err := l.storage.GetTenant(rec.TenantID)
	if err != nil {
		return nil, err
	}
	if err := receipt.Render(w, *rec, *p, *tenant); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return rec, nil
}

func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}
