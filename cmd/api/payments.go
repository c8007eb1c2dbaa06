package main

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/CodeWithFin/tenant-track-hub/pkg/finance"
	"github.com/CodeWithFin/tenant-track-hub/pkg/ledger"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/CodeWithFin/tenant-track-hub/pkg/receipt"
	"github.com/CodeWithFin/tenant-track-hub/pkg/report"
)

type paymentRequest struct {
	TenantID        string               `json:"tenant_id" validate:"required"`
	PropertyID      string               `json:"property_id"`
	Amount          decimal.Decimal      `json:"amount" validate:"gt=0"`
	Date            string               `json:"date" validate:"required,datetime=2006-01-02"`
	Method          models.PaymentMethod `json:"method" validate:"required"`
	ReferenceNumber string               `json:"reference_number"`
	BankName        string               `json:"bank_name"`
	AccountNumber   string               `json:"account_number"`
	Notes           string               `json:"notes"`
}

func (s *Server) paymentMethodsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.PaymentMethods())
}

func (s *Server) recordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := finance.Validate(req); err != nil {
		writeFailure(w, r, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	payment, rec, err := s.ledger.RecordPayment(ledger.PaymentInput{
		TenantID:        req.TenantID,
		PropertyID:      req.PropertyID,
		Amount:          req.Amount,
		Date:            date,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		BankName:        req.BankName,
		AccountNumber:   req.AccountNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"payment": payment,
		"receipt": rec,
	})
}

func (s *Server) listPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	records, err := s.ledger.ListPayments(filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments": records,
		"count":    len(records),
	})
}

func (s *Server) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetPayment(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) paymentLateFeeHandler(w http.ResponseWriter, r *http.Request) {
	assessment, err := s.ledger.LateFeeForPayment(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func (s *Server) paymentReceiptHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.ReceiptForPayment(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) exportPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.ledger.ExportPayments(&buf, filter); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeCSV(w, "payments.csv", buf.Bytes())
}

func (s *Server) monthlyRevenueHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	points, err := s.ledger.MonthlyRevenue(filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) monthlyRevenueCSVHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	points, err := s.ledger.MonthlyRevenue(filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteMonthlyRevenueCSV(&buf, points); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeCSV(w, "monthly-revenue.csv", buf.Bytes())
}

func (s *Server) methodBreakdownHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	shares, err := s.ledger.MethodBreakdown(filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilter(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	summary, err := s.ledger.Summary(filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) getReceiptHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.GetReceipt(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) downloadReceiptHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	rec, err := s.ledger.RenderReceipt(&buf, mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.FileName(*rec)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
