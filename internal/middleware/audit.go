package middleware

import (
	"strings"
	"time"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditMiddleware writes request-level audit entries for mutating calls.
// Entity-level before/after logging happens in the services; this layer
// captures who hit which endpoint from where.
type AuditMiddleware struct {
	auditService services.AuditLogsService
}

func NewAuditMiddleware(auditService services.AuditLogsService) *AuditMiddleware {
	return &AuditMiddleware{
		auditService: auditService,
	}
}

// AuditRequest logs mutating requests and failed requests. Read-only
// traffic is skipped to keep the audit table useful.
func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			path := c.Path()
			if !m.shouldLog(method, path, err) {
				return err
			}

			ctx := c.Request().Context()
			adminID, ok := common.GetAdminIDFromContext(ctx)
			if !ok {
				// Unauthenticated endpoints carry no actor to attribute.
				return err
			}

			data := map[string]interface{}{
				"method":     method,
				"path":       path,
				"user_agent": c.Request().UserAgent(),
				"ip":         c.RealIP(),
				"timestamp":  time.Now().Format(time.RFC3339),
			}
			if email, ok := common.GetAdminEmailFromContext(ctx); ok {
				data["email"] = email
			}
			if err != nil {
				data["error"] = err.Error()
			}

			action := method + " " + path
			if logErr := m.auditService.LogActivity(ctx, "http_requests", path, action, &adminID, nil, data); logErr != nil {
				c.Logger().Errorf("Failed to log audit activity: %v", logErr)
			}

			return err
		}
	}
}

func (m *AuditMiddleware) shouldLog(method, path string, reqErr error) bool {
	if m.shouldSkip(path) {
		return false
	}
	if reqErr != nil {
		return true
	}
	return method == "POST" || method == "PUT" || method == "PATCH" || method == "DELETE"
}

func (m *AuditMiddleware) shouldSkip(path string) bool {
	skipPrefixes := []string{
		"/health",
		"/swagger",
		"/favicon",
		"/robots.txt",
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
