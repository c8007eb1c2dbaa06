package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/CodeWithFin/tenant-track-hub/pkg/config"
	"github.com/CodeWithFin/tenant-track-hub/pkg/ledger"
	"github.com/CodeWithFin/tenant-track-hub/pkg/logger"
	"github.com/CodeWithFin/tenant-track-hub/pkg/models"
	"github.com/CodeWithFin/tenant-track-hub/pkg/store"
)

const dateLayout = "2006-01-02"

// Server holds the ledger instance.
type Server struct {
	ledger  *ledger.Ledger
	storage store.Storage // Keep a reference to the storage to close it
	log     zerolog.Logger
}

func NewServer(s store.Storage, policy ledger.Policy, log zerolog.Logger) *Server {
	return &Server{
		ledger:  ledger.NewLedger(s, policy, log),
		storage: s,
		log:     log,
	}
}

// routes registers every endpoint. Fixed paths such as /payments/export.csv
// come before their {id} siblings so mux matches them first.
func (s *Server) routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/calculations/late-fee", s.lateFeeHandler).Methods("POST")
	router.HandleFunc("/calculations/proration", s.prorationHandler).Methods("POST")
	router.HandleFunc("/calculations/deposit-interest", s.depositInterestHandler).Methods("POST")
	router.HandleFunc("/calculations/rental-tax", s.rentalTaxHandler).Methods("POST")
	router.HandleFunc("/calculations/rent-increase", s.rentIncreaseHandler).Methods("POST")
	router.HandleFunc("/calculations/lease-renewal", s.leaseRenewalHandler).Methods("POST")

	router.HandleFunc("/properties", s.listPropertiesHandler).Methods("GET")
	router.HandleFunc("/properties", s.createPropertyHandler).Methods("POST")
	router.HandleFunc("/properties/{id}", s.getPropertyHandler).Methods("GET")
	router.HandleFunc("/properties/{id}", s.updatePropertyHandler).Methods("PUT")
	router.HandleFunc("/properties/{id}", s.deletePropertyHandler).Methods("DELETE")

	router.HandleFunc("/tenants", s.listTenantsHandler).Methods("GET")
	router.HandleFunc("/tenants", s.createTenantHandler).Methods("POST")
	router.HandleFunc("/tenants/{id}", s.getTenantHandler).Methods("GET")
	router.HandleFunc("/tenants/{id}", s.updateTenantHandler).Methods("PUT")
	router.HandleFunc("/tenants/{id}", s.deleteTenantHandler).Methods("DELETE")

	router.HandleFunc("/leases", s.listLeasesHandler).Methods("GET")
	router.HandleFunc("/leases", s.createLeaseHandler).Methods("POST")
	router.HandleFunc("/leases/{id}", s.getLeaseHandler).Methods("GET")
	router.HandleFunc("/leases/{id}", s.updateLeaseHandler).Methods("PUT")
	router.HandleFunc("/leases/{id}", s.deleteLeaseHandler).Methods("DELETE")
	router.HandleFunc("/leases/{id}/renewal", s.leaseRenewalQuoteHandler).Methods("GET")
	router.HandleFunc("/leases/{id}/proration", s.moveInChargeHandler).Methods("GET")
	router.HandleFunc("/leases/{id}/deposit-interest", s.depositInterestQuoteHandler).Methods("GET")

	router.HandleFunc("/payment-methods", s.paymentMethodsHandler).Methods("GET")
	router.HandleFunc("/payments", s.listPaymentsHandler).Methods("GET")
	router.HandleFunc("/payments", s.recordPaymentHandler).Methods("POST")
	router.HandleFunc("/payments/export.csv", s.exportPaymentsHandler).Methods("GET")
	router.HandleFunc("/payments/{id}", s.getPaymentHandler).Methods("GET")
	router.HandleFunc("/payments/{id}/late-fee", s.paymentLateFeeHandler).Methods("GET")
	router.HandleFunc("/payments/{id}/receipt", s.paymentReceiptHandler).Methods("GET")

	router.HandleFunc("/reports/monthly-revenue", s.monthlyRevenueHandler).Methods("GET")
	router.HandleFunc("/reports/monthly-revenue.csv", s.monthlyRevenueCSVHandler).Methods("GET")
	router.HandleFunc("/reports/methods", s.methodBreakdownHandler).Methods("GET")
	router.HandleFunc("/reports/summary", s.summaryHandler).Methods("GET")

	router.HandleFunc("/maintenance", s.listMaintenanceHandler).Methods("GET")
	router.HandleFunc("/maintenance", s.reportMaintenanceHandler).Methods("POST")
	router.HandleFunc("/maintenance/{id}", s.getMaintenanceHandler).Methods("GET")
	router.HandleFunc("/maintenance/{id}", s.updateMaintenanceHandler).Methods("PUT")
	router.HandleFunc("/maintenance/{id}", s.deleteMaintenanceHandler).Methods("DELETE")

	router.HandleFunc("/receipts/{id}", s.getReceiptHandler).Methods("GET")
	router.HandleFunc("/receipts/{id}/download", s.downloadReceiptHandler).Methods("GET")

	return recovery(s.log)(requestLogger(s.log)(router))
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// parseDate reads a yyyy-mm-dd date. An empty string yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date like 2024-01-31", errBadRequest, field)
	}
	return t, nil
}

// paymentFilter reads ?from=&to=&method=&property=&tenant=.
func paymentFilter(r *http.Request) (ledger.PaymentFilter, error) {
	q := r.URL.Query()
	from, err := parseDate("from", q.Get("from"))
	if err != nil {
		return ledger.PaymentFilter{}, err
	}
	to, err := parseDate("to", q.Get("to"))
	if err != nil {
		return ledger.PaymentFilter{}, err
	}
	return ledger.PaymentFilter{
		From:       from,
		To:         to,
		Method:     models.PaymentMethod(q.Get("method")),
		PropertyID: q.Get("property"),
		TenantID:   q.Get("tenant"),
	}, nil
}

func openStore(cfg *config.Config) (store.Storage, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(cfg.DBPath)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogFormat)

	storage, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize store")
	}
	defer storage.Close()

	server := NewServer(storage, ledger.Policy{
		LateFeePercentage: cfg.LateFeePercentage(),
		MaxLateFee:        cfg.MaxLateFee(),
		RentDueDay:        cfg.RentDueDay,
		RoundTax:          cfg.TaxRoundAmount,
	}, log)

	httpServer := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      server.routes(),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.AppAddr).Str("driver", cfg.StoreDriver).Msg("Starting API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}
