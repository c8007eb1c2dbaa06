package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeWithFin/tenant-track-hub/pkg/finance"
	"github.com/CodeWithFin/tenant-track-hub/pkg/ledger"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/CodeWithFin/tenant-track-hub/pkg/store"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()
	server := NewServer(store.NewMemoryStore(), ledger.DefaultPolicy(), zerolog.Nop())
	return server.routes()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func createTenant(t *testing.T, h http.Handler) models.Tenant {
	t.Helper()
	rr := do(t, h, "POST", "/properties", map[string]interface{}{
		"id": "prop-001", "name": "Riverside Apartments", "units": 4,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, "POST", "/tenants", map[string]interface{}{
		"first_name":  "Jane",
		"last_name":   "Wanjiku",
		"property_id": "prop-001",
		"unit_number": "101",
		"rent_amount": "50000",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var tenant models.Tenant
	decode(t, rr, &tenant)
	return tenant
}

func TestAPI_LateFeeCalculation(t *testing.T) {
	h := setupTestServer(t)

	rr := do(t, h, "POST", "/calculations/late-fee", map[string]interface{}{
		"rent_amount":  50000,
		"due_date":     "2024-01-01",
		"payment_date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		LateFee  decimal.Decimal `json:"late_fee"`
		DaysLate int             `json:"days_late"`
	}
	decode(t, rr, &res)
	assert.True(t, res.LateFee.Equal(decimal.NewFromInt(2500)), "got %s", res.LateFee)
	assert.Equal(t, 4, res.DaysLate)

	rr = do(t, h, "POST", "/calculations/late-fee", map[string]interface{}{
		"rent_amount":    50000,
		"due_date":       "2024-01-01",
		"payment_date":   "2024-01-05",
		"fee_percentage": 10,
		"max_fee":        3000,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &res)
	assert.True(t, res.LateFee.Equal(decimal.NewFromInt(3000)))
}

func TestAPI_LateFeeUsesPolicyPercentage(t *testing.T) {
	policy := ledger.DefaultPolicy()
	policy.LateFeePercentage = decimal.NewFromInt(8)
	h := NewServer(store.NewMemoryStore(), policy, zerolog.Nop()).routes()

	rr := do(t, h, "POST", "/calculations/late-fee", map[string]interface{}{
		"rent_amount":  50000,
		"due_date":     "2024-01-01",
		"payment_date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		LateFee decimal.Decimal `json:"late_fee"`
	}
	decode(t, rr, &res)
	assert.True(t, res.LateFee.Equal(decimal.NewFromInt(4000)), "got %s", res.LateFee)
}

func TestAPI_CalculationValidation(t *testing.T) {
	h := setupTestServer(t)

	cases := []struct {
		name string
		path string
		body interface{}
	}{
		{"negative rent", "/calculations/late-fee", map[string]interface{}{"rent_amount": -1, "due_date": "2024-01-01", "payment_date": "2024-01-05"}},
		{"missing due date", "/calculations/late-fee", map[string]interface{}{"rent_amount": 100, "payment_date": "2024-01-05"}},
		{"bad date", "/calculations/proration", map[string]interface{}{"monthly_rent": 100, "lease_start_date": "01/15/2024"}},
		{"negative rate", "/calculations/deposit-interest", map[string]interface{}{"deposit_amount": 100, "annual_rate_percent": -3, "term_months": 12}},
		{"negative term", "/calculations/lease-renewal", map[string]interface{}{"current_rent": 100, "increase_percent": 5, "term_months": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, "POST", tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}

	req := httptest.NewRequest("POST", "/calculations/rent-increase", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_Calculations(t *testing.T) {
	h := setupTestServer(t)

	rr := do(t, h, "POST", "/calculations/proration", map[string]interface{}{
		"monthly_rent": 50000, "lease_start_date": "2024-01-16",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var proration struct {
		ProratedRent decimal.Decimal `json:"prorated_rent"`
	}
	decode(t, rr, &proration)
	assert.True(t, proration.ProratedRent.Equal(decimal.NewFromInt(25806)))

	rr = do(t, h, "POST", "/calculations/rental-tax", map[string]interface{}{
		"annual_income": 600000, "deductible_expenses": 100000, "rate_percent": 10,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var tax finance.TaxResult
	decode(t, rr, &tax)
	assert.True(t, tax.TaxableIncome.Equal(decimal.NewFromInt(500000)))
	assert.True(t, tax.TaxAmount.Equal(decimal.NewFromInt(50000)))

	rr = do(t, h, "POST", "/calculations/lease-renewal", map[string]interface{}{
		"current_rent": 50000, "increase_percent": 5, "term_months": 12,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var renewal finance.LeaseRenewalResult
	decode(t, rr, &renewal)
	assert.True(t, renewal.MonthlyRent.Equal(decimal.NewFromInt(52500)))
	assert.True(t, renewal.TotalContractValue.Equal(decimal.NewFromInt(630000)))
}

func TestAPI_RecordPaymentAndReceipt(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "POST", "/payments", map[string]interface{}{
		"tenant_id":        tenant.ID,
		"amount":           "50000",
		"date":             "2024-01-05",
		"method":           "m-pesa",
		"reference_number": "QWE123456",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		Payment models.Payment `json:"payment"`
		Receipt models.Receipt `json:"receipt"`
	}
	decode(t, rr, &created)
	assert.Equal(t, "prop-001", created.Payment.PropertyID)
	assert.Equal(t, created.Receipt.ID, created.Payment.ReceiptID)

	rr = do(t, h, "GET", "/payments/"+created.Payment.ID+"/late-fee", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var assessment ledger.LateFeeAssessment
	decode(t, rr, &assessment)
	assert.Equal(t, 4, assessment.DaysLate)
	assert.True(t, assessment.Fee.Equal(decimal.NewFromInt(2500)))

	rr = do(t, h, "GET", "/receipts/"+created.Receipt.ID+"/download", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), created.Receipt.ReceiptNumber)
	assert.Contains(t, rr.Body.String(), "Payment Method: M-Pesa")
}

func TestAPI_RecordPaymentErrors(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "POST", "/payments", map[string]interface{}{
		"tenant_id": tenant.ID, "amount": 0, "date": "2024-01-05", "method": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/payments", map[string]interface{}{
		"tenant_id": tenant.ID, "amount": 10, "date": "2024-01-05", "method": "barter",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/payments", map[string]interface{}{
		"tenant_id": "ten-404", "amount": 10, "date": "2024-01-05", "method": "cash",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "GET", "/payments/pay-404", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_ReportsAndExport(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	for _, p := range []map[string]interface{}{
		{"tenant_id": tenant.ID, "amount": 50000, "date": "2024-01-02", "method": "cash"},
		{"tenant_id": tenant.ID, "amount": 50000, "date": "2023-12-01", "method": "m-pesa"},
		{"tenant_id": tenant.ID, "amount": 45000, "date": "2023-02-01", "method": "cash", "notes": "partial"},
	} {
		rr := do(t, h, "POST", "/payments", p)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := do(t, h, "GET", "/reports/monthly-revenue", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var points []struct {
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}
	decode(t, rr, &points)
	require.Len(t, points, 3)
	assert.Equal(t, "Feb 2023", points[0].Label)
	assert.Equal(t, "Dec 2023", points[1].Label)
	assert.Equal(t, "Jan 2024", points[2].Label)

	rr = do(t, h, "GET", "/payments?from=2023-12-01&to=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Count int `json:"count"`
	}
	decode(t, rr, &listed)
	assert.Equal(t, 2, listed.Count)

	rr = do(t, h, "GET", "/payments?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "GET", "/payments/export.csv?method=cash", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	rows, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Date", "Tenant", "Property", "Amount", "Method", "Reference", "Notes"}, rows[0])
	assert.Equal(t, "Riverside Apartments", rows[1][3])
	assert.Equal(t, "partial", rows[2][7])

	rr = do(t, h, "GET", "/reports/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary struct {
		TotalCollected decimal.Decimal `json:"total_collected"`
		PaymentCount   int             `json:"payment_count"`
		VacancyRate    float64         `json:"vacancy_rate"`
		AnnualRentRoll decimal.Decimal `json:"annual_rent_roll"`
		Maintenance    struct {
			Pending int `json:"pending"`
		} `json:"maintenance"`
	}
	decode(t, rr, &summary)
	assert.True(t, summary.TotalCollected.Equal(decimal.NewFromInt(145000)))
	assert.Equal(t, 3, summary.PaymentCount)
	assert.InDelta(t, 75.0, summary.VacancyRate, 0.0001)
	assert.True(t, summary.AnnualRentRoll.Equal(decimal.NewFromInt(600000)), "got %s", summary.AnnualRentRoll)
	assert.Equal(t, 0, summary.Maintenance.Pending)
}

func TestAPI_LeaseRenewalQuote(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "POST", "/leases", map[string]interface{}{
		"tenant_id":   tenant.ID,
		"property_id": "prop-001",
		"start_date":  "2024-01-16T00:00:00Z",
		"end_date":    "2025-01-15T00:00:00Z",
		"rent_amount": "50000",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var lease models.Lease
	decode(t, rr, &lease)

	rr = do(t, h, "GET", "/leases/"+lease.ID+"/renewal?increase=5", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var quote finance.LeaseRenewalResult
	decode(t, rr, &quote)
	assert.True(t, quote.TotalContractValue.Equal(decimal.NewFromInt(630000)))

	rr = do(t, h, "GET", "/leases/"+lease.ID+"/renewal?increase=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "GET", "/leases/lease-404/renewal?increase=5", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "POST", "/leases", map[string]interface{}{"tenant_id": "ten-404"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_DeleteTenant(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "DELETE", "/tenants/"+tenant.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, "GET", "/tenants/"+tenant.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_DuplicateIDConflict(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "POST", "/properties", map[string]interface{}{
		"id": "prop-001", "name": "Riverside Again", "units": 2,
	})
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"error"`)

	rr = do(t, h, "POST", "/tenants", map[string]interface{}{
		"id": tenant.ID, "first_name": "John", "property_id": "prop-001",
	})
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	lease := map[string]interface{}{"id": "lease-dup", "tenant_id": tenant.ID, "property_id": "prop-001"}
	rr = do(t, h, "POST", "/leases", lease)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, h, "POST", "/leases", lease)
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = do(t, h, "GET", "/properties/prop-001", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Riverside Apartments")
}

func TestAPI_PaymentReceiptLookup(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "POST", "/payments", map[string]interface{}{
		"tenant_id": tenant.ID, "amount": 50000, "date": "2024-03-01", "method": "bank",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		Payment models.Payment `json:"payment"`
		Receipt models.Receipt `json:"receipt"`
	}
	decode(t, rr, &created)

	rr = do(t, h, "GET", "/payments/"+created.Payment.ID+"/receipt", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var rec models.Receipt
	decode(t, rr, &rec)
	assert.Equal(t, created.Receipt.ID, rec.ID)
	assert.Equal(t, created.Payment.ID, rec.PaymentID)

	rr = do(t, h, "GET", "/payments/pay-404/receipt", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_LeaseFiltersAndDepositInterest(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	today := time.Now().UTC()
	for _, l := range []map[string]interface{}{
		{"id": "lease-soon", "tenant_id": tenant.ID, "property_id": "prop-001", "end_date": today.AddDate(0, 0, 10), "security_deposit": "50000"},
		{"id": "lease-later", "tenant_id": tenant.ID, "property_id": "prop-001", "end_date": today.AddDate(0, 0, 90)},
		{"id": "lease-ended", "tenant_id": tenant.ID, "property_id": "prop-002", "end_date": today.AddDate(0, 0, 5), "status": "expired"},
	} {
		rr := do(t, h, "POST", "/leases", l)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	ids := func(path string) []string {
		rr := do(t, h, "GET", path, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var leases []models.Lease
		decode(t, rr, &leases)
		out := make([]string, 0, len(leases))
		for _, l := range leases {
			out = append(out, l.ID)
		}
		return out
	}

	assert.Equal(t, []string{"lease-ended", "lease-later", "lease-soon"}, ids("/leases"))
	assert.Equal(t, []string{"lease-later", "lease-soon"}, ids("/leases?status=active"))
	assert.Equal(t, []string{"lease-ended"}, ids("/leases?property=prop-002"))
	assert.Equal(t, []string{"lease-soon"}, ids("/leases?expiring_within=30"))
	assert.Empty(t, ids("/leases?tenant=ten-404"))

	rr := do(t, h, "GET", "/leases?expiring_within=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "GET", "/leases/lease-soon/deposit-interest?rate=3", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res struct {
		Months   int             `json:"months"`
		Interest decimal.Decimal `json:"interest"`
	}
	decode(t, rr, &res)
	assert.Equal(t, 12, res.Months)
	assert.True(t, res.Interest.Equal(decimal.NewFromInt(1500)), "got %s", res.Interest)

	rr = do(t, h, "GET", "/leases/lease-soon/deposit-interest?rate=3&months=6", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &res)
	assert.True(t, res.Interest.Equal(decimal.NewFromInt(750)), "got %s", res.Interest)

	rr = do(t, h, "GET", "/leases/lease-soon/deposit-interest?rate=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "GET", "/leases/lease-404/deposit-interest?rate=3", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_Maintenance(t *testing.T) {
	h := setupTestServer(t)
	tenant := createTenant(t, h)

	rr := do(t, h, "POST", "/maintenance", map[string]interface{}{
		"property_id":   "prop-001",
		"tenant_id":     tenant.ID,
		"title":         "Leaking kitchen tap",
		"date_reported": "2024-05-02",
		"priority":      "high",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var leak models.MaintenanceRequest
	decode(t, rr, &leak)
	assert.Equal(t, models.MaintenanceStatusPending, leak.Status)
	assert.Equal(t, models.MaintenancePriorityHigh, leak.Priority)

	rr = do(t, h, "POST", "/maintenance", map[string]interface{}{
		"property_id": "prop-001", "title": "Broken gate", "date_reported": "2024-05-20",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var gate models.MaintenanceRequest
	decode(t, rr, &gate)
	assert.Equal(t, models.MaintenancePriorityMedium, gate.Priority)

	rr = do(t, h, "POST", "/maintenance", map[string]interface{}{"property_id": "prop-001"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, "POST", "/maintenance", map[string]interface{}{"property_id": "prop-001", "title": "x", "priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, h, "POST", "/maintenance", map[string]interface{}{"property_id": "prop-404", "title": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, "PUT", "/maintenance/"+gate.ID, map[string]interface{}{
		"property_id": "prop-001", "title": "Broken gate", "status": "in-progress", "priority": "low",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, "GET", "/maintenance/"+gate.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.MaintenanceRequest
	decode(t, rr, &updated)
	assert.Equal(t, models.MaintenanceStatusInProgress, updated.Status)
	assert.Equal(t, "2024-05-20", updated.DateReported.Format(dateLayout))

	var listed struct {
		Requests []models.MaintenanceRequest `json:"requests"`
		Count    int                         `json:"count"`
		Pending  int                         `json:"pending"`
	}
	rr = do(t, h, "GET", "/maintenance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &listed)
	assert.Equal(t, 2, listed.Count)
	assert.Equal(t, 1, listed.Pending)
	require.Len(t, listed.Requests, 2)
	assert.Equal(t, gate.ID, listed.Requests[0].ID)

	rr = do(t, h, "GET", "/maintenance?status=pending&tenant="+tenant.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &listed)
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, leak.ID, listed.Requests[0].ID)

	rr = do(t, h, "GET", "/reports/summary", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary struct {
		Maintenance struct {
			Pending    int `json:"pending"`
			InProgress int `json:"in_progress"`
		} `json:"maintenance"`
	}
	decode(t, rr, &summary)
	assert.Equal(t, 1, summary.Maintenance.Pending)
	assert.Equal(t, 1, summary.Maintenance.InProgress)

	rr = do(t, h, "DELETE", "/maintenance/"+leak.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, h, "GET", "/maintenance/"+leak.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, h, "PUT", "/maintenance/"+leak.ID, map[string]interface{}{"property_id": "prop-001", "title": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}
