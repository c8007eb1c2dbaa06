package main

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/CodeWithFin/tenant-track-hub/pkg/finance"
)

type lateFeeRequest struct {
	RentAmount    decimal.Decimal  `json:"rent_amount"`
	DueDate       string           `json:"due_date"`
	PaymentDate   string           `json:"payment_date"`
	FeePercentage *decimal.Decimal `json:"fee_percentage"` // defaults to the landlord policy
	MaxFee        decimal.Decimal  `json:"max_fee"`
}

func (s *Server) lateFeeHandler(w http.ResponseWriter, r *http.Request) {
	var req lateFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	paid, err := parseDate("payment_date", req.PaymentDate)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	params := finance.LateFeeParams{
		RentAmount:    req.RentAmount,
		DueDate:       due,
		PaymentDate:   paid,
		FeePercentage: s.ledger.Policy().LateFeePercentage,
		MaxFee:        req.MaxFee,
	}
	if req.FeePercentage != nil {
		params.FeePercentage = *req.FeePercentage
	}
	if err := finance.Validate(params); err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"late_fee":  finance.LateFee(params),
		"days_late": finance.DaysLate(due, paid),
	})
}

func (s *Server) prorationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MonthlyRent    decimal.Decimal `json:"monthly_rent"`
		LeaseStartDate string          `json:"lease_start_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	start, err := parseDate("lease_start_date", req.LeaseStartDate)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	params := finance.ProrationParams{MonthlyRent: req.MonthlyRent, LeaseStartDate: start}
	if err := finance.Validate(params); err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prorated_rent": finance.ProratedRent(params),
	})
}

func (s *Server) depositInterestHandler(w http.ResponseWriter, r *http.Request) {
	var params finance.DepositInterestParams
	if err := decodeJSON(r, &params); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := finance.Validate(params); err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interest": finance.DepositInterest(params),
	})
}

// rentalTaxHandler rounds the tax when either the request or the landlord
// policy asks for it.
func (s *Server) rentalTaxHandler(w http.ResponseWriter, r *http.Request) {
	var params finance.TaxParams
	if err := decodeJSON(r, &params); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := finance.Validate(params); err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.ledger.RentalTax(params))
}

func (s *Server) rentIncreaseHandler(w http.ResponseWriter, r *http.Request) {
	var params finance.RentIncreaseParams
	if err := decodeJSON(r, &params); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := finance.Validate(params); err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, finance.RentIncrease(params))
}

func (s *Server) leaseRenewalHandler(w http.ResponseWriter, r *http.Request) {
	var params finance.LeaseRenewalParams
	if err := decodeJSON(r, &params); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := finance.Validate(params); err != nil {
		writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, finance.LeaseRenewal(params))
}
