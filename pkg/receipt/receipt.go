package receipt

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
)

const (
	CurrencySymbol = "KSh"
	displayLayout  = "Jan 02, 2006"
)

// Generator issues receipts and is safe for concurrent use. Now and Rand are
// replaceable for tests.
type Generator struct {
	Now  func() time.Time
	Rand *rand.Rand

	mu sync.Mutex // guards Rand
}

// NewGenerator returns a Generator using the wall clock and a time seeded source.
func NewGenerator() *Generator {
	return &Generator{
		Now:  time.Now,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Number returns a receipt number of the form REC-<year>-<4 digits>.
func (g *Generator) Number() string {
	g.mu.Lock()
	n := 1000 + g.Rand.Intn(9000)
	g.mu.Unlock()
	return fmt.Sprintf("REC-%d-%d", g.Now().Year(), n)
}

// New issues a receipt for a payment made by tenant.
func (g *Generator) New(payment models.Payment, tenant models.Tenant) models.Receipt {
	now := g.Now()
	return models.Receipt{
		ID:            "rec-" + uuid.New().String()[:8],
		PaymentID:     payment.ID,
		TenantID:      tenant.ID,
		TenantName:    tenant.FullName(),
		ReceiptNumber: g.Number(),
		Date:          time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Amount:        payment.Amount,
	}
}

// FormatAmount renders money with thousands separators, e.g. "KSh 45,000".
func FormatAmount(amount decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	if amount.Equal(amount.Truncate(0)) {
		return p.Sprintf("%s %d", CurrencySymbol, amount.IntPart())
	}
	f, _ := amount.Round(2).Float64()
	return p.Sprintf("%s %.2f", CurrencySymbol, f)
}

// Render writes the plain-text body of a receipt.
func Render(w io.Writer, r models.Receipt, payment models.Payment, tenant models.Tenant) error {
	_, err := fmt.Fprintf(w,
		"Receipt Number: %s\n"+
			"Date: %s\n"+
			"Tenant: %s\n"+
			"Property: %s\n"+
			"Unit: %s\n"+
			"Amount: %s\n"+
			"Payment Method: %s\n"+
			"Payment Date: %s\n"+
			"\n"+
			"Thank you for your payment!\n",
		r.ReceiptNumber,
		r.Date.Format(displayLayout),
		tenant.FullName(),
		tenant.PropertyID,
		tenant.UnitNumber,
		FormatAmount(payment.Amount),
		payment.Method.Label(),
		payment.Date.Format(displayLayout),
	)
	return err
}

// FileName is the download name for a rendered receipt.
func FileName(r models.Receipt) string {
	return "Receipt-" + r.ReceiptNumber + ".txt"
}
