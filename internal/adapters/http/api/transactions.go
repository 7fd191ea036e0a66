package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/finno/internal/domain/model"
)

// TransactionDependencies defines the write side of the API.
type TransactionDependencies interface {
	ResolveUser(ctx context.Context, n int) (string, error)
	Enrich(raw string) model.Transaction
	AddTransaction(ctx context.Context, userID string, tx model.Transaction) (model.Transaction, error)
}

// TransactionHandler handles enrichment and ledger writes.
type TransactionHandler struct {
	deps TransactionDependencies
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(deps TransactionDependencies) *TransactionHandler {
	return &TransactionHandler{deps: deps}
}

type enrichRequest struct {
	RawText string `json:"raw_text"`
}

type enrichResponse struct {
	Enriched model.Transaction `json:"enriched"`
}

type addTransactionRequest struct {
	UserID      int               `json:"user_id"`
	Transaction model.Transaction `json:"transaction"`
}

type addTransactionResponse struct {
	Success     bool              `json:"success"`
	Transaction model.Transaction `json:"transaction"`
}

// HandleEnrich handles POST /api/enrich requests.
func (h *TransactionHandler) HandleEnrich(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req enrichRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingText)
		return
	}
	writeJSON(w, http.StatusOK, enrichResponse{Enriched: h.deps.Enrich(req.RawText)})
}

// HandleAddTransaction handles POST /api/add-transaction requests.
func (h *TransactionHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req addTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	userID, err := h.deps.ResolveUser(r.Context(), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	added, err := h.deps.AddTransaction(r.Context(), userID, req.Transaction)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addTransactionResponse{Success: true, Transaction: added})
}
