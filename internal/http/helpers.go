package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/demo"
	"github.com/mrlokans/library/internal/security"
	"github.com/mrlokans/library/internal/services"
)

// --- Error Response Helpers ---

// renderErrorPage renders the generic error template with the numeric status.
func renderErrorPage(c *gin.Context, status int, message string) {
	c.HTML(status, "error", viewData(c, gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	}))
}

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and rendered as a bare 500 without details.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrBookNotFound):
		renderErrorPage(c, http.StatusNotFound, "Book not found")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		c.Status(499)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		renderErrorPage(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Renders a 400 error page and returns 0, false when the value is not an ID.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		renderErrorPage(c, http.StatusBadRequest, "Invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePageParam returns the 1-based page number, or false when the value is
// not a positive integer.
func parsePageParam(c *gin.Context, paramName string) (int, bool) {
	n, err := strconv.Atoi(c.Param(paramName))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// --- View Data ---

// viewData merges per-request values every template needs (CSRF field,
// demo flag) into data.
func viewData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["CSRFField"] = security.CSRFTokenField(c)
	data["DemoMode"] = c.GetBool(demo.ContextKeyDemoMode)
	data["AnalyticsScript"] = analyticsScriptTag(c)
	return data
}

// pageNumbers returns 1..n for the pagination links.
func pageNumbers(n int) []int {
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
