package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/username/rentfolio/backend/src/logger"
	"github.com/username/rentfolio/backend/src/security"
	"github.com/username/rentfolio/backend/src/utils"
)

type contextKey string

const customerIDContextKey contextKey = "customerID"

// GetCustomerIDFromContext extracts the authenticated customer id set by
// AuthMiddleware.
func GetCustomerIDFromContext(ctx context.Context) (string, bool) {
	customerID, ok := ctx.Value(customerIDContextKey).(string)
	return customerID, ok
}

// AuthMiddleware verifies the bearer token and stores the customer id on
// the request context.
func AuthMiddleware(authService *security.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		customerID, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), customerIDContextKey, customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CronAuthMiddleware guards the automation endpoint with a shared secret.
// The scheduler sends it as a bearer token.
func CronAuthMiddleware(cronSecret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cronSecret == "" {
			logger.L.Error("CronAuthMiddleware: CRON_SECRET not configured, rejecting request", "path", r.URL.Path)
			utils.SendJSONError(w, "Automation endpoint not configured", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) != 1 {
			logger.L.Warn("CronAuthMiddleware: Invalid cron secret", "path", r.URL.Path)
			utils.SendJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
