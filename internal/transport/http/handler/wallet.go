package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/application/wallet"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/transport/http/middleware"
)

// WalletHandler serves balance, ledger and top-up endpoints.
type WalletHandler struct {
	svc wallet.Service
}

func NewWalletHandler(svc wallet.Service) *WalletHandler { return &WalletHandler{svc: svc} }

type balanceEnvelope struct {
	Success       bool         `json:"success"`
	WalletBalance domain.Money `json:"walletBalance"`
}

type transactionsEnvelope struct {
	Success      bool                       `json:"success"`
	Transactions []domain.WalletTransaction `json:"transactions"`
}

type topUpEnvelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	PaymentURL string `json:"paymentUrl"`
	OrderID    string `json:"orderId"`
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	bal, err := h.svc.Balance(r.Context(), u.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceEnvelope{Success: true, WalletBalance: bal})
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txns, err := h.svc.Transactions(r.Context(), u.UserID, limit)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsEnvelope{Success: true, Transactions: txns})
}

func (h *WalletHandler) Add(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authorized")
		return
	}
	var req domain.AddMoneyRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.InitiateTopUp(r.Context(), u, req.Amount)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topUpEnvelope{
		Success:    true,
		Message:    "Payment initiated",
		PaymentURL: res.PaymentURL,
		OrderID:    res.OrderID,
	})
}

// PhonePeCallback receives PhonePe's server-to-server payment notification.
func (h *WalletHandler) PhonePeCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.HandlePhonePeCallback(r.Context(), body, r.Header.Get("X-VERIFY")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true})
}

// Credit lets an admin add funds to any wallet.
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreditRequest
	if err := decode(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	txn, err := h.svc.Credit(r.Context(), chi.URLParam(r, "id"), domain.TxnSourceAdmin, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, success(txn))
}
