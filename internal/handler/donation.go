package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"donate/internal/domain"
	"donate/internal/middleware"
	"donate/internal/service"
)

// DonationHandler handles HTTP requests for donations.
type DonationHandler struct {
	donationService  *service.DonationService
	reconcileService *service.ReconcileService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donationService *service.DonationService, reconcileService *service.ReconcileService) *DonationHandler {
	return &DonationHandler{
		donationService:  donationService,
		reconcileService: reconcileService,
	}
}

// CreateDonationRequest is the HTTP request body for creating a donation.
type CreateDonationRequest struct {
	Amount float64 `json:"amount"`
}

// DonationResponse is the HTTP response for donation data.
type DonationResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toDonationResponse(d *domain.Donation) DonationResponse {
	return DonationResponse{
		ID:        d.ID,
		Amount:    d.Amount,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /v1/donations
func (h *DonationHandler) Create(c *gin.Context) {
	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a valid donation amount is required"})
		return
	}

	donation, err := h.donationService.CreateDonation(c.Request.Context(), middleware.PayerRef(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDonationResponse(donation))
}

// History handles GET /v1/donations
func (h *DonationHandler) History(c *gin.Context) {
	donations, err := h.donationService.ListByPayer(c.Request.Context(), middleware.PayerRef(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DonationResponse, 0, len(donations))
	for _, d := range donations {
		response = append(response, toDonationResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateStatusRequest is the HTTP request body for a manual status update.
type UpdateStatusRequest struct {
	DonationID string `json:"donation_id"`
	Status     string `json:"status"`
}

// StatusResponse is the HTTP response for status operations.
type StatusResponse struct {
	DonationID string `json:"donation_id,omitempty"`
	Status     string `json:"status"`
}

// UpdateStatus handles POST /v1/donations/status (operator/testing path).
func (h *DonationHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.DonationID == "" || req.Status == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "donation_id and status are required"})
		return
	}

	status, err := h.reconcileService.ManualUpdate(c.Request.Context(), req.DonationID, domain.DonationStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatusResponse{
		DonationID: req.DonationID,
		Status:     string(status),
	})
}

// GetStatus handles GET /v1/donations/status?order_id=...
// Public polling endpoint: an unknown ID answers with the NOT_FOUND
// sentinel, never an error, so the waiting client's loop stays uniform.
func (h *DonationHandler) GetStatus(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing order_id"})
		return
	}

	status, err := h.donationService.GetStatus(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatusResponse{Status: status})
}
