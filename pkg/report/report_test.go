package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/CodeWithFin/tenant-track-hub/pkg/payments"
)

var (
	tenants = []models.Tenant{
		{ID: "ten-001", FirstName: "Jane", LastName: "Wanjiku", PropertyID: "prop-001", Status: models.TenantStatusActive},
		{ID: "ten-002", FirstName: "Peter", LastName: "Otieno", PropertyID: "prop-001", Status: models.TenantStatusActive},
		{ID: "ten-003", FirstName: "Amina", LastName: "Hassan", PropertyID: "prop-002", Status: models.TenantStatusInactive},
	}
	properties = []models.Property{
		{ID: "prop-001", Name: "Riverside Apartments", Units: 8},
		{ID: "prop-002", Name: "Garden Villas", Units: 4},
	}
)

func records() []models.Payment {
	return []models.Payment{
		{
			ID: "pay-001", TenantID: "ten-001", PropertyID: "prop-001",
			Amount: decimal.NewFromInt(45000), Date: time.Date(2023, 8, 1, 9, 30, 0, 0, time.UTC),
			Method: models.PaymentMethodBankTransfer, ReferenceNumber: "KCB-778", Notes: "August rent",
		},
		{
			ID: "pay-002", TenantID: "ten-404", PropertyID: "prop-404",
			Amount: decimal.RequireFromString("48000.50"), Date: time.Date(2023, 9, 2, 0, 0, 0, 0, time.UTC),
			Method: models.PaymentMethodMPesa,
		},
	}
}

func TestExportRows(t *testing.T) {
	rows := ExportRows(records(), TenantsByID(tenants), PropertiesByID(properties))
	require.Len(t, rows, 2)

	assert.Equal(t, ExportRow{
		ID:        "pay-001",
		Date:      "2023-08-01",
		Tenant:    "Jane Wanjiku",
		Property:  "Riverside Apartments",
		Amount:    "45000",
		Method:    "bank transfer",
		Reference: "KCB-778",
		Notes:     "August rent",
	}, rows[0])

	assert.Equal(t, "Unknown", rows[1].Tenant)
	assert.Equal(t, "Unknown", rows[1].Property)
	assert.Equal(t, "N/A", rows[1].Reference)
	assert.Equal(t, "N/A", rows[1].Notes)
	assert.Equal(t, "48000.5", rows[1].Amount)
}

func TestExportRowsNilLookups(t *testing.T) {
	rows := ExportRows(records(), nil, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "Unknown", rows[0].Tenant)
	assert.Equal(t, "Unknown", rows[0].Property)
}

func TestWritePaymentsCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	rows := ExportRows(records(), TenantsByID(tenants), PropertiesByID(properties))
	require.NoError(t, WritePaymentsCSV(buf, rows))

	got, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ExportHeader, got[0])
	assert.Equal(t, rows[0].Fields(), got[1])
}

func TestWriteMonthlyRevenueCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteMonthlyRevenueCSV(buf, payments.MonthlyRevenue(records())))

	got, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Month", "Amount"},
		{"Aug 2023", "45000"},
		{"Sep 2023", "48000.5"},
	}, got)
}

func TestOccupancyAndVacancy(t *testing.T) {
	occ := Occupancy(properties, tenants)
	require.Len(t, occ, 2)
	assert.Equal(t, PropertyOccupancy{PropertyID: "prop-001", Name: "Riverside Apartments", Occupied: 2, Vacant: 6}, occ[0])
	assert.Equal(t, 0, occ[1].Occupied)
	assert.Equal(t, 4, occ[1].Vacant)

	// 12 units, 2 active tenants
	assert.InDelta(t, 83.333, VacancyRate(properties, tenants), 0.001)
	assert.Zero(t, VacancyRate(nil, tenants))
}

func TestOccupancyOverbooked(t *testing.T) {
	small := []models.Property{{ID: "prop-001", Name: "Bedsitter", Units: 1}}
	occ := Occupancy(small, tenants)
	require.Len(t, occ, 1)
	assert.Equal(t, 2, occ[0].Occupied)
	assert.Equal(t, 0, occ[0].Vacant)
}

func TestAnnualRentRoll(t *testing.T) {
	rents := []models.Tenant{
		{ID: "ten-001", RentAmount: decimal.NewFromInt(45000), Status: models.TenantStatusActive},
		{ID: "ten-002", RentAmount: decimal.NewFromInt(30000), Status: models.TenantStatusActive},
		{ID: "ten-003", RentAmount: decimal.NewFromInt(99000), Status: models.TenantStatusInactive},
	}
	assert.True(t, AnnualRentRoll(rents).Equal(decimal.NewFromInt(900000)))
	assert.True(t, AnnualRentRoll(nil).IsZero())
}

func TestCountMaintenance(t *testing.T) {
	requests := []models.MaintenanceRequest{
		{ID: "maint-001", Status: models.MaintenanceStatusCompleted},
		{ID: "maint-002", Status: models.MaintenanceStatusInProgress},
		{ID: "maint-003", Status: models.MaintenanceStatusPending},
		{ID: "maint-004", Status: models.MaintenanceStatusPending},
	}
	assert.Equal(t, MaintenanceCounts{Pending: 2, InProgress: 1, Completed: 1}, CountMaintenance(requests))
	assert.Equal(t, MaintenanceCounts{}, CountMaintenance(nil))
}

func TestSummarize(t *testing.T) {
	requests := []models.MaintenanceRequest{{ID: "maint-001", Status: models.MaintenanceStatusPending}}
	s := Summarize(records(), properties, tenants, requests)
	assert.True(t, s.TotalCollected.Equal(decimal.RequireFromString("93000.5")))
	assert.Equal(t, 2, s.PaymentCount)
	assert.Len(t, s.Occupancy, 2)
	assert.Equal(t, 1, s.Maintenance.Pending)
	assert.True(t, s.AnnualRentRoll.IsZero())
}
