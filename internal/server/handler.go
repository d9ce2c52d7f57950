package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/ledger-transaction-cache/internal/cache"
	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/models"
)

// LedgerService is the part of the ledger the HTTP API reads from.
type LedgerService interface {
	OpenAccount(ctx context.Context, name string, system bool) (models.Account, error)
	GetBalance(ctx context.Context, accountId int64) (decimal.Decimal, error)
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)
}

// TransactionCache accepts transfers for deferred, merged posting.
type TransactionCache interface {
	Submit(source, destination int64, amount decimal.Decimal, message string, options models.TransferOptions)
	Flush(ctx context.Context) (cache.FlushStats, error)
}

type handler struct {
	ledger LedgerService
	cache  TransactionCache
	logger logrus.FieldLogger
}

// NewHandler returns the HTTP API: account management, cached transfer
// submission and ledger reads.
func NewHandler(ledger LedgerService, txCache TransactionCache, logger logrus.FieldLogger) http.Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h := &handler{ledger: ledger, cache: txCache, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/accounts", h.openAccount)
	mux.HandleFunc("/accounts/balance", h.balance)
	mux.HandleFunc("/transactions", h.submitTransaction)
	mux.HandleFunc("/transactions/flush", h.flush)
	mux.HandleFunc("/ledgerEntries", h.ledgerEntries)
	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) openAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name   string `json:"name"`
		System bool   `json:"system"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.ledger.OpenAccount(r.Context(), req.Name, req.System)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"name":  req.Name,
			"error": err.Error(),
		}).Error("Opening account failed")
		http.Error(w, "failed to open account", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// submitTransaction only queues the transfer; the ledger sees it on the next flush.
func (h *handler) submitTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		FromAccount int64           `json:"from_account"`
		ToAccount   int64           `json:"to_account"`
		Amount      decimal.Decimal `json:"amount"`
		Message     string          `json:"message"`
		Options     uint32          `json:"options"`
	}

	// Parse JSON body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	h.cache.Submit(req.FromAccount, req.ToAccount, req.Amount, req.Message, models.TransferOptions(req.Options))

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "Accepted Transaction"})
}

func (h *handler) flush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.cache.Flush(r.Context())
	if errors.Is(err, cache.ErrCacheClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := r.URL.Query().Get("account_id")
	if raw == "" {
		http.Error(w, "account_id is a mandatory field", http.StatusBadRequest)
		return
	}
	accountId, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "account_id must be an integer", http.StatusBadRequest)
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), accountId)
	if errors.Is(err, interfaces.ErrAccountNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := struct {
		AccountID int64           `json:"account_id"`
		Balance   decimal.Decimal `json:"balance"`
	}{
		AccountID: accountId,
		Balance:   balance,
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *handler) ledgerEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ledgerEntries, err := h.ledger.GetLedgerEntries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ledgerEntries)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
