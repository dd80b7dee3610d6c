package http

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/httputil"
)

// maxUserIDLength bounds the identity header value.
const maxUserIDLength = 256

// IdentityMiddleware reads the user ID from a header set by the fronting
// authentication proxy and stores it in the request context.
//
// The header is trusted as is. The service must only be reachable through a proxy
// that strips any client-supplied value of this header.
//
// Returns:
//   - 401 Unauthorized: header missing, blank or malformed
//   - Continues: user ID stored in context
func IdentityMiddleware(header string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(header))
		if userID == "" || len(userID) > maxUserIDLength || strings.IndexFunc(userID, unicode.IsControl) >= 0 {
			logger.Debug("request without a valid identity header", slog.String("header", header))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
