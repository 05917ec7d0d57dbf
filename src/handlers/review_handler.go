package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/services"
	"github.com/username/rentfolio/backend/src/utils"
)

type ReviewHandler struct {
	uploadService services.UploadService
	reviewService services.ReviewService
}

func NewReviewHandler(uploadService services.UploadService, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		uploadService: uploadService,
		reviewService: reviewService,
	}
}

// HandleGetReviewSession returns the pending unmatched groups for a session
// so a client can resume an interrupted review.
func (h *ReviewHandler) HandleGetReviewSession(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or customer ID not found in context", http.StatusUnauthorized)
		return
	}

	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		utils.SendJSONError(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	groups, err := h.uploadService.GetReviewSession(customerID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrReviewSessionNotFound) {
			utils.SendJSONError(w, "Review session not found or expired. Please re-upload the file.", http.StatusNotFound)
			return
		}
		logger.L.Error("Error fetching review session", "customerID", customerID, "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "An internal error occurred.", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]any{"sessionId": sessionID, "unmatchedGroups": groups}, http.StatusOK)
}

type reviewRequest struct {
	SessionID string                `json:"sessionId"`
	Items     []services.ReviewItem `json:"items"`
}

// HandleSubmitReview applies the caller's decisions for unmatched groups.
func (h *ReviewHandler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or customer ID not found in context", http.StatusUnauthorized)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Failed to decode review request body", "customerID", customerID, "error", err)
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.reviewService.ResolveGroups(r.Context(), customerID, req.SessionID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCustomerNotFound):
			utils.SendJSONError(w, "Customer not found", http.StatusNotFound)
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error resolving review", "customerID", customerID, "sessionID", req.SessionID, "error", err)
			utils.SendJSONError(w, "An internal error occurred while applying review decisions.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
