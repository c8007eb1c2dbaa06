// Package report shapes payment data into display-ready rows and CSV.
package report

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"

	"github.com/CodeWithFin/tenant-track-hub/pkg/finance"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/CodeWithFin/tenant-track-hub/pkg/payments"
)

const (
	DateLayout  = "2006-01-02"
	unknownName = "Unknown"
	notProvided = "N/A"
)

// ExportHeader is the column order of payment exports.
var ExportHeader = []string{"ID", "Date", "Tenant", "Property", "Amount", "Method", "Reference", "Notes"}

// ExportRow is a payment joined with its tenant and property names.
type ExportRow struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Tenant    string `json:"tenant"`
	Property  string `json:"property"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// Fields returns the row values in ExportHeader order.
func (r ExportRow) Fields() []string {
	return []string{r.ID, r.Date, r.Tenant, r.Property, r.Amount, r.Method, r.Reference, r.Notes}
}

func LookupTenant(byID map[string]models.Tenant, id string) (models.Tenant, bool) {
	t, ok := byID[id]
	return t, ok
}

func LookupProperty(byID map[string]models.Property, id string) (models.Property, bool) {
	p, ok := byID[id]
	return p, ok
}

// ExportRows resolves tenant and property names for each payment. Missing
// lookups become "Unknown" and empty optional fields "N/A".
func ExportRows(records []models.Payment, tenantsByID map[string]models.Tenant, propertiesByID map[string]models.Property) []ExportRow {
	rows := make([]ExportRow, 0, len(records))
	for _, p := range records {
		tenantName := unknownName
		if t, ok := LookupTenant(tenantsByID, p.TenantID); ok {
			tenantName = t.FullName()
		}
		propertyName := unknownName
		if prop, ok := LookupProperty(propertiesByID, p.PropertyID); ok {
			propertyName = prop.Name
		}

		rows = append(rows, ExportRow{
			ID:        p.ID,
			Date:      p.Date.Format(DateLayout),
			Tenant:    tenantName,
			Property:  propertyName,
			Amount:    p.Amount.String(),
			Method:    string(p.Method),
			Reference: orNotProvided(p.ReferenceNumber),
			Notes:     orNotProvided(p.Notes),
		})
	}
	return rows
}

func orNotProvided(s string) string {
	if s == "" {
		return notProvided
	}
	return s
}

// TenantsByID indexes tenants for ExportRows.
func TenantsByID(tenants []models.Tenant) map[string]models.Tenant {
	out := make(map[string]models.Tenant, len(tenants))
	for _, t := range tenants {
		out[t.ID] = t
	}
	return out
}

func PropertiesByID(properties []models.Property) map[string]models.Property {
	out := make(map[string]models.Property, len(properties))
	for _, p := range properties {
		out[p.ID] = p
	}
	return out
}

// WritePaymentsCSV writes rows with a header line.
func WritePaymentsCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Fields()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMonthlyRevenueCSV emits monthly revenue as CSV.
func WriteMonthlyRevenueCSV(w io.Writer, points []payments.MonthlyAmount) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Month", "Amount"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{point.Label, point.Amount.String()}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// PropertyOccupancy counts occupied and vacant units of one property.
type PropertyOccupancy struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	Occupied   int    `json:"occupied"`
	Vacant     int    `json:"vacant"`
}

// Occupancy counts active tenants against each property's units. Vacant never
// drops below zero when a property has more active tenants than units.
func Occupancy(properties []models.Property, tenants []models.Tenant) []PropertyOccupancy {
	active := activeByProperty(tenants)
	out := make([]PropertyOccupancy, 0, len(properties))
	for _, p := range properties {
		occupied := active[p.ID]
		out = append(out, PropertyOccupancy{
			PropertyID: p.ID,
			Name:       p.Name,
			Occupied:   occupied,
			Vacant:     max(p.Units-occupied, 0),
		})
	}
	return out
}

// VacancyRate is the percentage of units without an active tenant, or 0 when
// there are no units.
func VacancyRate(properties []models.Property, tenants []models.Tenant) float64 {
	totalUnits := 0
	for _, p := range properties {
		totalUnits += p.Units
	}
	if totalUnits <= 0 {
		return 0
	}
	occupied := 0
	for _, t := range tenants {
		if t.Status == models.TenantStatusActive {
			occupied++
		}
	}
	return float64(totalUnits-occupied) / float64(totalUnits) * 100
}

func activeByProperty(tenants []models.Tenant) map[string]int {
	counts := make(map[string]int)
	for _, t := range tenants {
		if t.Status == models.TenantStatusActive {
			counts[t.PropertyID]++
		}
	}
	return counts
}

// MaintenanceCounts tallies maintenance requests by status.
type MaintenanceCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func CountMaintenance(requests []models.MaintenanceRequest) MaintenanceCounts {
	var c MaintenanceCounts
	for _, r := range requests {
		switch r.Status {
		case models.MaintenanceStatusPending:
			c.Pending++
		case models.MaintenanceStatusInProgress:
			c.InProgress++
		case models.MaintenanceStatusCompleted:
			c.Completed++
		}
	}
	return c
}

// AnnualRentRoll is a year of rent from every active tenant.
func AnnualRentRoll(tenants []models.Tenant) decimal.Decimal {
	monthly := decimal.Zero
	for _, t := range tenants {
		if t.Status == models.TenantStatusActive {
			monthly = monthly.Add(t.RentAmount)
		}
	}
	return finance.AnnualRent(monthly)
}

// Summary is the headline numbers of the reports page.
type Summary struct {
	TotalCollected decimal.Decimal     `json:"total_collected"`
	PaymentCount   int                 `json:"payment_count"`
	AnnualRentRoll decimal.Decimal     `json:"annual_rent_roll"`
	VacancyRate    float64             `json:"vacancy_rate"`
	Occupancy      []PropertyOccupancy `json:"occupancy"`
	Maintenance    MaintenanceCounts   `json:"maintenance"`
}

func Summarize(records []models.Payment, properties []models.Property, tenants []models.Tenant, requests []models.MaintenanceRequest) Summary {
	return Summary{
		TotalCollected: payments.Total(records),
		PaymentCount:   len(records),
		AnnualRentRoll: AnnualRentRoll(tenants),
		VacancyRate:    VacancyRate(properties, tenants),
		Occupancy:      Occupancy(properties, tenants),
		Maintenance:    CountMaintenance(requests),
	}
}
