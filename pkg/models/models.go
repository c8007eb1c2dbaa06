package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodMPesa        PaymentMethod = "m-pesa"
	PaymentMethodBankTransfer PaymentMethod = "bank transfer"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodCreditCard   PaymentMethod = "credit card"
	PaymentMethodDebitCard    PaymentMethod = "debit card"
	PaymentMethodOther        PaymentMethod = "other"
)

// MethodOption pairs a payment method with its display label.
type MethodOption struct {
	Value PaymentMethod `json:"value"`
	Label string        `json:"label"`
}

var paymentMethods = []MethodOption{
	{PaymentMethodCash, "Cash"},
	{PaymentMethodMPesa, "M-Pesa"},
	{PaymentMethodBankTransfer, "Bank Transfer"},
	{PaymentMethodCheck, "Check"},
	{PaymentMethodPayPal, "PayPal"},
	{PaymentMethodCreditCard, "Credit Card"},
	{PaymentMethodDebitCard, "Debit Card"},
	{PaymentMethodOther, "Other"},
}

// PaymentMethods returns the accepted payment methods in display order.
func PaymentMethods() []MethodOption {
	out := make([]MethodOption, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	return m.Rank() >= 0
}

// Rank is the position of m in the display order, or -1 when unknown.
func (m PaymentMethod) Rank() int {
	for i, opt := range paymentMethods {
		if opt.Value == m {
			return i
		}
	}
	return -1
}

// Label returns the display label, falling back to the raw value.
func (m PaymentMethod) Label() string {
	if i := m.Rank(); i >= 0 {
		return paymentMethods[i].Label
	}
	return string(m)
}

type Payment struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	PropertyID      string          `json:"property_id"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Method          PaymentMethod   `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"` // M-Pesa code, card or cheque reference
	BankName        string          `json:"bank_name,omitempty"`
	AccountNumber   string          `json:"account_number,omitempty"`
	ReceiptID       string          `json:"receipt_id,omitempty"` // Set once a receipt has been issued
	Notes           string          `json:"notes,omitempty"`
}

type Property struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Type        string `json:"type"`
	Units       int    `json:"units"`
	Description string `json:"description,omitempty"`
	YearBuilt   int    `json:"year_built,omitempty"`
}

type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

type Tenant struct {
	ID         string          `json:"id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	PropertyID string          `json:"property_id"`
	UnitNumber string          `json:"unit_number"`
	LeaseStart time.Time       `json:"lease_start"`
	LeaseEnd   time.Time       `json:"lease_end"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	Status     TenantStatus    `json:"status"`
}

// FullName is the tenant's display name.
func (t Tenant) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

type LeaseStatus string

const (
	LeaseStatusActive         LeaseStatus = "active"
	LeaseStatusPendingRenewal LeaseStatus = "pending_renewal"
	LeaseStatusExpired        LeaseStatus = "expired"
	LeaseStatusTerminated     LeaseStatus = "terminated"
)

type Lease struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	PropertyID      string          `json:"property_id"`
	UnitNumber      string          `json:"unit_number"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	RentAmount      decimal.Decimal `json:"rent_amount"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	Status          LeaseStatus     `json:"status"`
	Terms           string          `json:"terms,omitempty"`
}

type Receipt struct {
	ID            string          `json:"id"`
	PaymentID     string          `json:"payment_id"`
	TenantID      string          `json:"tenant_id"`
	TenantName    string          `json:"tenant_name"`
	ReceiptNumber string          `json:"receipt_number"` // REC-<year>-<4 digits>
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
}

type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "pending"
	MaintenanceStatusInProgress MaintenanceStatus = "in-progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceStatusPending, MaintenanceStatusInProgress, MaintenanceStatusCompleted:
		return true
	}
	return false
}

type MaintenancePriority string

const (
	MaintenancePriorityLow    MaintenancePriority = "low"
	MaintenancePriorityMedium MaintenancePriority = "medium"
	MaintenancePriorityHigh   MaintenancePriority = "high"
)

func (p MaintenancePriority) Valid() bool {
	switch p {
	case MaintenancePriorityLow, MaintenancePriorityMedium, MaintenancePriorityHigh:
		return true
	}
	return false
}

// MaintenanceRequest is a repair reported by a tenant for a property.
type MaintenanceRequest struct {
	ID           string              `json:"id"`
	PropertyID   string              `json:"property_id"`
	TenantID     string              `json:"tenant_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	DateReported time.Time           `json:"date_reported"`
	Status       MaintenanceStatus   `json:"status"`
	Priority     MaintenancePriority `json:"priority"`
}
