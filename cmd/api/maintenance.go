package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CodeWithFin/tenant-track-hub/pkg/ledger"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

type maintenanceRequest struct {
	PropertyID   string                     `json:"property_id"`
	TenantID     string                     `json:"tenant_id"`
	Title        string                     `json:"title"`
	Description  string                     `json:"description"`
	DateReported string                     `json:"date_reported"`
	Status       models.MaintenanceStatus   `json:"status"`
	Priority     models.MaintenancePriority `json:"priority"`
}

func (req maintenanceRequest) model(id string) (models.MaintenanceRequest, error) {
	reported, err := parseDate("date_reported", req.DateReported)
	if err != nil {
		return models.MaintenanceRequest{}, err
	}
	return models.MaintenanceRequest{
		ID:           id,
		PropertyID:   req.PropertyID,
		TenantID:     req.TenantID,
		Title:        req.Title,
		Description:  req.Description,
		DateReported: reported,
		Status:       req.Status,
		Priority:     req.Priority,
	}, nil
}

// listMaintenanceHandler handles GET /maintenance?property=&tenant=&status=.
func (s *Server) listMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := s.ledger.ListMaintenance(ledger.MaintenanceFilter{
		PropertyID: q.Get("property"),
		TenantID:   q.Get("tenant"),
		Status:     models.MaintenanceStatus(q.Get("status")),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	pending, err := s.ledger.PendingMaintenanceCount()
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
		"pending":  pending,
	})
}

func (s *Server) reportMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	m, err := req.model("")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if m.PropertyID != "" {
		if _, err := s.ledger.GetProperty(m.PropertyID); err != nil {
			writeFailure(w, r, err)
			return
		}
	}

	created, err := s.ledger.ReportMaintenance(m)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	m, err := s.ledger.GetMaintenanceRequest(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	var req maintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	m, err := req.model(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	existing, err := s.ledger.GetMaintenanceRequest(m.ID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	// Keep the original report date unless the caller moves it.
	if m.DateReported.IsZero() {
		m.DateReported = existing.DateReported
	}

	if err := s.ledger.UpdateMaintenanceRequest(&m); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteMaintenanceRequest(mux.Vars(r)["id"]); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
