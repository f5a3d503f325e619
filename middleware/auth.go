package middleware

import (
	"net/http"
	"strings"

	"github.com/ThousifMd/MatchlensAI/utils"
)

// AdminAuthMiddleware guards the operator endpoints with a bearer JWT issued
// by the admin login handler.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteError(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized")
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if _, err := utils.ValidateAdminToken(tokenStr); err != nil {
			utils.WriteError(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
