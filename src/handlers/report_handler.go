package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/services"
	"github.com/username/rentfolio/backend/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: service,
	}
}

type generateReportRequest struct {
	PropertyID string `json:"propertyId"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

// HandleGenerateReport generates an owner statement on demand and returns
// the stored PDF's public URL.
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or customer ID not found in context", http.StatusUnauthorized)
		return
	}

	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Failed to decode report request body", "customerID", customerID, "error", err)
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PropertyID == "" {
		utils.SendJSONError(w, "Missing 'propertyId'", http.StatusBadRequest)
		return
	}

	report, err := h.reportService.GenerateReport(r.Context(), customerID, req.PropertyID, req.Month, req.Year)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrCustomerNotFound), errors.Is(err, services.ErrPropertyNotFound):
			utils.SendJSONError(w, "Property not found", http.StatusNotFound)
		case errors.Is(err, services.ErrNoDataForPeriod):
			utils.SendJSONError(w, "No transactions found for the requested period", http.StatusUnprocessableEntity)
		default:
			logger.L.Error("Internal error generating report", "customerID", customerID, "propertyID", req.PropertyID,
				"month", req.Month, "year", req.Year, "error", err)
			utils.SendJSONError(w, "An internal error occurred while generating the report.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, map[string]string{"url": report.URL}, http.StatusOK)
}
