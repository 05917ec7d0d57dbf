package handlers

import (
	"net/http"

	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/services"
	"github.com/username/rentfolio/backend/src/utils"
)

type CronHandler struct {
	batchService services.BatchService
}

func NewCronHandler(service services.BatchService) *CronHandler {
	return &CronHandler{
		batchService: service,
	}
}

// HandleMonthlyReports runs one batch slice of the monthly report
// automation. The scheduler re-invokes while the response's hasMore is
// true.
func (h *CronHandler) HandleMonthlyReports(w http.ResponseWriter, r *http.Request) {
	result, err := h.batchService.RunMonthlyReports(r.Context())
	if err != nil {
		logger.L.Error("Monthly report batch failed before processing", "error", err)
		utils.SendJSONError(w, "Batch run failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
