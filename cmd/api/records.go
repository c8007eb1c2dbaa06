package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/CodeWithFin/tenant-track-hub/pkg/ledger"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

func (s *Server) listPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	properties, err := s.ledger.GetAllProperties()
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, properties)
}

func (s *Server) createPropertyHandler(w http.ResponseWriter, r *http.Request) {
	var p models.Property
	if err := decodeJSON(r, &p); err != nil {
		writeFailure(w, r, err)
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.ledger.CreateProperty(p)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getPropertyHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetProperty(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	var p models.Property
	if err := decodeJSON(r, &p); err != nil {
		writeFailure(w, r, err)
		return
	}
	p.ID = mux.Vars(r)["id"] // Ensure ID from URL is used

	if err := s.ledger.UpdateProperty(&p); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteProperty(mux.Vars(r)["id"]); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTenantsHandler(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.ledger.GetAllTenants()
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (s *Server) createTenantHandler(w http.ResponseWriter, r *http.Request) {
	var t models.Tenant
	if err := decodeJSON(r, &t); err != nil {
		writeFailure(w, r, err)
		return
	}
	if t.FirstName == "" && t.LastName == "" {
		writeError(w, http.StatusBadRequest, "tenant name is required")
		return
	}

	created, err := s.ledger.CreateTenant(t)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getTenantHandler(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTenant(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTenantHandler(w http.ResponseWriter, r *http.Request) {
	var t models.Tenant
	if err := decodeJSON(r, &t); err != nil {
		writeFailure(w, r, err)
		return
	}
	t.ID = mux.Vars(r)["id"]

	if err := s.ledger.UpdateTenant(&t); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// deleteTenantHandler also removes the tenant's leases, payments and receipts.
func (s *Server) deleteTenantHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTenant(mux.Vars(r)["id"]); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listLeasesHandler handles GET /leases?status=&tenant=&property=&expiring_within=.
func (s *Server) listLeasesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.LeaseFilter{
		Status:     models.LeaseStatus(q.Get("status")),
		TenantID:   q.Get("tenant"),
		PropertyID: q.Get("property"),
	}
	if raw := q.Get("expiring_within"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid expiring_within %q", raw))
			return
		}
		filter.ExpiringWithin = days
	}

	leases, err := s.ledger.ListLeases(filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leases)
}

func (s *Server) createLeaseHandler(w http.ResponseWriter, r *http.Request) {
	var l models.Lease
	if err := decodeJSON(r, &l); err != nil {
		writeFailure(w, r, err)
		return
	}
	if l.TenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}
	// Surface a missing tenant as 404 whatever the storage driver reports.
	if _, err := s.ledger.GetTenant(l.TenantID); err != nil {
		writeFailure(w, r, err)
		return
	}

	created, err := s.ledger.CreateLease(l)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getLeaseHandler(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.GetLease(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) updateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	var l models.Lease
	if err := decodeJSON(r, &l); err != nil {
		writeFailure(w, r, err)
		return
	}
	l.ID = mux.Vars(r)["id"]

	if err := s.ledger.UpdateLease(&l); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) deleteLeaseHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteLease(mux.Vars(r)["id"]); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// leaseRenewalQuoteHandler handles GET /leases/{id}/renewal?increase=5&term=12.
// term defaults to 12 months.
func (s *Server) leaseRenewalQuoteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	increase, err := decimal.NewFromString(q.Get("increase"))
	if err != nil || increase.IsNegative() {
		writeError(w, http.StatusBadRequest, "increase must be a non-negative percentage")
		return
	}
	term := 12
	if raw := q.Get("term"); raw != "" {
		term, err = strconv.Atoi(raw)
		if err != nil || term < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid term %q", raw))
			return
		}
	}

	quote, err := s.ledger.RenewLease(mux.Vars(r)["id"], increase, term)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) moveInChargeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	charge, err := s.ledger.MoveInCharge(id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lease_id":      id,
		"prorated_rent": charge,
	})
}

// depositInterestQuoteHandler handles GET /leases/{id}/deposit-interest?rate=3&months=12.
// months defaults to 12.
func (s *Server) depositInterestQuoteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rate, err := decimal.NewFromString(q.Get("rate"))
	if err != nil || rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "rate must be a non-negative percentage")
		return
	}
	months := 12
	if raw := q.Get("months"); raw != "" {
		months, err = strconv.Atoi(raw)
		if err != nil || months < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid months %q", raw))
			return
		}
	}

	id := mux.Vars(r)["id"]
	interest, err := s.ledger.DepositInterest(id, rate, months)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lease_id": id,
		"months":   months,
		"interest": interest,
	})
}
