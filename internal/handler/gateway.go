package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"donate/internal/gateway"
	"donate/internal/metrics"
	"donate/internal/repository"
	"donate/internal/service"
)

// GatewayHandler handles the two PayHere boundary operations: outbound
// checkout authorization and the inbound payment notification webhook.
type GatewayHandler struct {
	donationService  *service.DonationService
	reconcileService *service.ReconcileService
}

// NewGatewayHandler creates a new GatewayHandler.
func NewGatewayHandler(donationService *service.DonationService, reconcileService *service.ReconcileService) *GatewayHandler {
	return &GatewayHandler{
		donationService:  donationService,
		reconcileService: reconcileService,
	}
}

// CheckoutRequest is the HTTP request body for a checkout authorization.
type CheckoutRequest struct {
	OrderID  string `json:"order_id"`
	Currency string `json:"currency"`
}

// CheckoutResponse carries the values the client passes to the gateway.
type CheckoutResponse struct {
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
}

// Checkout handles POST /v1/gateway/checkout
func (h *GatewayHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id is required"})
		return
	}

	auth, err := h.donationService.AuthorizeCheckout(c.Request.Context(), req.OrderID, req.Currency)
	if err != nil {
		metrics.IncCheckout("error")
		respondError(c, err)
		return
	}

	metrics.IncCheckout("issued")
	respondJSON(c, http.StatusOK, CheckoutResponse{
		MerchantID: auth.MerchantID,
		OrderID:    auth.OrderID,
		Amount:     auth.Amount,
		Currency:   auth.Currency,
		Hash:       auth.Hash,
	})
}

// Notify handles POST /v1/gateway/notify
//
// This endpoint is public: PayHere cannot present a session token, so the
// recomputed signature is the only authentication. Every outcome except a
// signature mismatch answers 200 so the gateway stops retrying; an unknown
// order is acknowledged but logged as an anomaly.
func (h *GatewayHandler) Notify(c *gin.Context) {
	n := gateway.Notification{
		MerchantID: c.PostForm("merchant_id"),
		OrderID:    c.PostForm("order_id"),
		Amount:     c.PostForm("payhere_amount"),
		Currency:   c.PostForm("payhere_currency"),
		StatusCode: c.PostForm("status_code"),
		Signature:  c.PostForm("md5sig"),
	}

	start := time.Now()
	_, applied, err := h.reconcileService.HandleNotification(c.Request.Context(), n)
	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrSignatureMismatch):
			metrics.IncNotification(metrics.OutcomeBadSignature)
			c.String(http.StatusUnauthorized, "Invalid Signature")
		case errors.Is(err, gateway.ErrInvalidAmount):
			metrics.IncNotification(metrics.OutcomeError)
			c.String(http.StatusBadRequest, "Invalid Amount")
		case errors.Is(err, repository.ErrNotFound):
			// Acknowledge so the gateway stops retrying a reference this
			// ledger will never resolve.
			metrics.IncNotification(metrics.OutcomeUnknownOrder)
			log.Printf("notification for unknown order acknowledged: order=%s", n.OrderID)
			c.String(http.StatusOK, "OK")
		default:
			metrics.IncNotification(metrics.OutcomeError)
			log.Printf("notification processing failed: order=%s: %v", n.OrderID, err)
			c.String(http.StatusInternalServerError, "Internal Error")
		}
		return
	}

	if applied {
		metrics.IncNotification(metrics.OutcomeApplied)
	} else {
		metrics.IncNotification(metrics.OutcomeDuplicate)
	}

	c.String(http.StatusOK, "OK")
}
