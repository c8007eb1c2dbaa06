// Package payments filters and totals payment records. Functions never modify
// the slices they are given.
package payments

import (
	"fmt"
	"sort"
	"time"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/shopspring/decimal"
)

// MonthlyAmount is revenue for one calendar month. Year and Month carry the
// ordering; Label is display only.
type MonthlyAmount struct {
	Year   int             `json:"year"`
	Month  time.Month      `json:"month"`
	Label  string          `json:"label"` // e.g. "Jan 2024"
	Amount decimal.Decimal `json:"amount"`
}

// MethodShare is the count and total collected through one payment method.
type MethodShare struct {
	Method models.PaymentMethod `json:"method"`
	Label  string               `json:"label"`
	Count  int                  `json:"count"`
	Amount decimal.Decimal      `json:"amount"`
}

func filter(records []models.Payment, keep func(models.Payment) bool) []models.Payment {
	out := make([]models.Payment, 0, len(records))
	for _, p := range records {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByTimeRange keeps payments dated within [start, end], compared by
// calendar day.
func FilterByTimeRange(records []models.Payment, start, end time.Time) []models.Payment {
	from, to := dayKey(start), dayKey(end)
	return filter(records, func(p models.Payment) bool {
		d := dayKey(p.Date)
		return d >= from && d <= to
	})
}

func FilterByMethod(records []models.Payment, method models.PaymentMethod) []models.Payment {
	return filter(records, func(p models.Payment) bool { return p.Method == method })
}

func FilterByProperty(records []models.Payment, propertyID string) []models.Payment {
	return filter(records, func(p models.Payment) bool { return p.PropertyID == propertyID })
}

func FilterByTenant(records []models.Payment, tenantID string) []models.Payment {
	return filter(records, func(p models.Payment) bool { return p.TenantID == tenantID })
}

// Total sums every payment amount.
func Total(records []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range records {
		total = total.Add(p.Amount)
	}
	return total
}

// SumByMethod totals amounts per method. Methods with no payments are absent.
func SumByMethod(records []models.Payment) map[models.PaymentMethod]decimal.Decimal {
	sums := make(map[models.PaymentMethod]decimal.Decimal)
	for _, p := range records {
		sums[p.Method] = sums[p.Method].Add(p.Amount)
	}
	return sums
}

func CountByMethod(records []models.Payment) map[models.PaymentMethod]int {
	counts := make(map[models.PaymentMethod]int)
	for _, p := range records {
		counts[p.Method]++
	}
	return counts
}

func SumByProperty(records []models.Payment) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, p := range records {
		sums[p.PropertyID] = sums[p.PropertyID].Add(p.Amount)
	}
	return sums
}

func SumByTenant(records []models.Payment) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, p := range records {
		sums[p.TenantID] = sums[p.TenantID].Add(p.Amount)
	}
	return sums
}

// MethodBreakdown lists each method present in records with its count and
// total, in the standard method order. Unknown methods sort last by name.
func MethodBreakdown(records []models.Payment) []MethodShare {
	sums := SumByMethod(records)
	counts := CountByMethod(records)

	shares := make([]MethodShare, 0, len(sums))
	for method, amount := range sums {
		shares = append(shares, MethodShare{
			Method: method,
			Label:  method.Label(),
			Count:  counts[method],
			Amount: amount,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		ri, rj := shares[i].Method.Rank(), shares[j].Method.Rank()
		if ri < 0 || rj < 0 {
			if ri == rj {
				return shares[i].Method < shares[j].Method
			}
			return rj < 0
		}
		return ri < rj
	})
	return shares
}

// MonthlyRevenue groups payments by calendar month and returns the totals in
// chronological order.
func MonthlyRevenue(records []models.Payment) []MonthlyAmount {
	type yearMonth struct {
		year  int
		month time.Month
	}

	totals := make(map[yearMonth]decimal.Decimal)
	for _, p := range records {
		key := yearMonth{p.Date.Year(), p.Date.Month()}
		totals[key] = totals[key].Add(p.Amount)
	}

	points := make([]MonthlyAmount, 0, len(totals))
	for key, amount := range totals {
		points = append(points, MonthlyAmount{
			Year:   key.year,
			Month:  key.month,
			Label:  fmt.Sprintf("%s %d", key.month.String()[:3], key.year),
			Amount: amount,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points
}

// dayKey orders dates by calendar day as yyyymmdd.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
