// Package finance holds the rent calculators used by the ledger and the API.
//
// Every function here is pure and total: inputs are not validated and flow
// through arithmetically. Callers that need to reject out-of-domain input run
// Validate first.
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLateFeePercentage is applied when no policy overrides it.
const DefaultLateFeePercentage = 5

const secondsPerDay = 24 * 60 * 60

var (
	hundred    = decimal.NewFromInt(100)
	twelve     = decimal.NewFromInt(12)
	halfUnit   = decimal.NewFromFloat(0.5)
	monthsYear = decimal.NewFromInt(12 * 100)
)

// LateFeeParams describes a rent payment checked against its due date.
// MaxFee of zero means the fee is uncapped.
type LateFeeParams struct {
	RentAmount    decimal.Decimal `json:"rent_amount" validate:"gte=0"`
	DueDate       time.Time       `json:"due_date" validate:"required"`
	PaymentDate   time.Time       `json:"payment_date" validate:"required"`
	FeePercentage decimal.Decimal `json:"fee_percentage" validate:"gte=0"`
	MaxFee        decimal.Decimal `json:"max_fee" validate:"gte=0"`
}

type ProrationParams struct {
	MonthlyRent    decimal.Decimal `json:"monthly_rent" validate:"gte=0"`
	LeaseStartDate time.Time       `json:"lease_start_date" validate:"required"`
}

type DepositInterestParams struct {
	DepositAmount     decimal.Decimal `json:"deposit_amount" validate:"gte=0"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"gte=0"`
	TermMonths        int             `json:"term_months" validate:"gte=0"`
}

// TaxParams describes a year of rental income. RoundTax rounds TaxAmount to
// whole units; it is off by default so the amount stays exact.
type TaxParams struct {
	AnnualIncome       decimal.Decimal `json:"annual_income" validate:"gte=0"`
	DeductibleExpenses decimal.Decimal `json:"deductible_expenses" validate:"gte=0"`
	RatePercent        decimal.Decimal `json:"rate_percent" validate:"gte=0"`
	RoundTax           bool            `json:"round_tax"`
}

type TaxResult struct {
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}

type RentIncreaseParams struct {
	CurrentRent     decimal.Decimal `json:"current_rent" validate:"gte=0"`
	IncreasePercent decimal.Decimal `json:"increase_percent" validate:"gte=0"`
}

type RentIncreaseResult struct {
	NewRent  decimal.Decimal `json:"new_rent"`
	Increase decimal.Decimal `json:"increase"`
}

type LeaseRenewalParams struct {
	RentIncreaseParams
	TermMonths int `json:"term_months" validate:"gte=0"`
}

type LeaseRenewalResult struct {
	MonthlyRent        decimal.Decimal `json:"monthly_rent"`
	Increase           decimal.Decimal `json:"increase"`
	TotalContractValue decimal.Decimal `json:"total_contract_value"`
}

// LateFee returns the flat percentage fee owed when rent is paid after the due
// date. Lateness is judged by calendar day and does not scale the fee.
func LateFee(p LateFeeParams) decimal.Decimal {
	if !calendarDay(p.PaymentDate).After(calendarDay(p.DueDate)) {
		return decimal.Zero
	}

	fee := p.RentAmount.Mul(p.FeePercentage).Div(hundred)
	if p.MaxFee.GreaterThan(decimal.Zero) {
		return decimal.Min(fee, p.MaxFee)
	}
	return fee
}

// DaysLate counts calendar days between due and paid, or 0 when paid on time.
func DaysLate(due, paid time.Time) int {
	d := daysBetween(calendarDay(due), calendarDay(paid))
	if d < 0 {
		return 0
	}
	return d
}

// ProratedRent charges the part of the first month a lease actually covers,
// counting both the start day and the last day of the month.
func ProratedRent(p ProrationParams) decimal.Decimal {
	start := calendarDay(p.LeaseStartDate)
	if start.Day() == 1 {
		return p.MonthlyRent
	}

	monthEnd := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	daysInMonth := int64(monthEnd.Day())
	daysOccupied := int64(daysBetween(start, monthEnd) + 1)

	return Round(p.MonthlyRent.Mul(decimal.NewFromInt(daysOccupied)).Div(decimal.NewFromInt(daysInMonth)))
}

// DepositInterest is simple interest on a security deposit over TermMonths.
func DepositInterest(p DepositInterestParams) decimal.Decimal {
	interest := p.DepositAmount.
		Mul(p.AnnualRatePercent).
		Mul(decimal.NewFromInt(int64(p.TermMonths))).
		Div(monthsYear)
	return Round(interest)
}

// RentalTax floors taxable income at zero before applying the rate.
func RentalTax(p TaxParams) TaxResult {
	taxable := decimal.Max(decimal.Zero, p.AnnualIncome.Sub(p.DeductibleExpenses))
	tax := taxable.Mul(p.RatePercent).Div(hundred)
	if p.RoundTax {
		tax = Round(tax)
	}
	return TaxResult{TaxableIncome: taxable, TaxAmount: tax}
}

// RentIncrease rounds the increase first; NewRent is CurrentRent plus that
// rounded increase.
func RentIncrease(p RentIncreaseParams) RentIncreaseResult {
	increase := Round(p.CurrentRent.Mul(p.IncreasePercent).Div(hundred))
	return RentIncreaseResult{
		NewRent:  p.CurrentRent.Add(increase),
		Increase: increase,
	}
}

func LeaseRenewal(p LeaseRenewalParams) LeaseRenewalResult {
	r := RentIncrease(p.RentIncreaseParams)
	return LeaseRenewalResult{
		MonthlyRent:        r.NewRent,
		Increase:           r.Increase,
		TotalContractValue: r.NewRent.Mul(decimal.NewFromInt(int64(p.TermMonths))),
	}
}

// AnnualRent is twelve months of rent.
func AnnualRent(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}

// Round rounds to the nearest whole unit, halves toward positive infinity.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Add(halfUnit).Floor()
}

// calendarDay drops the time of day, keeping the date as seen in t's location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days between two UTC midnights. It works on Unix
// seconds because time.Duration overflows past roughly 292 years.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}
