package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/rentfolio/backend/src/config"
	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/security/validation"
	"github.com/username/rentfolio/backend/src/services"
	"github.com/username/rentfolio/backend/src/utils"
)

type UploadHandler struct {
	uploadService services.UploadService
}

func NewUploadHandler(service services.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: service,
	}
}

// HandleUpload accepts a multipart CSV upload plus a 'format' field naming
// the vendor export layout, validates the file, and runs the ingestion
// pipeline.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	customerID, ok := GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or customer ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "customerID", customerID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
	if format == "" {
		utils.SendJSONError(w, "Missing 'format' field. Expected 'appfolio' or 'buildium'.", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "customerID", customerID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "customerID", customerID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "customerID", customerID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "customerID", customerID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated", "customerID", customerID, "filename", fileHeader.Filename,
		"clientType", clientContentType, "detectedType", detectedContentType, "format", format)

	result, err := h.uploadService.ProcessUpload(r.Context(), file, customerID, format)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCustomerNotFound):
			utils.SendJSONError(w, "Customer not found", http.StatusNotFound)
		case errors.Is(err, services.ErrValidation):
			logger.L.Warn("Upload rejected by validation", "customerID", customerID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Upload processing failed due to CSV parsing errors", "customerID", customerID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error processing upload", "customerID", customerID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
