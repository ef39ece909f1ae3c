package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/services"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (session, issues)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondServiceError maps catalog and service errors to status codes.
// details is attached to the body for every mapped error.
func respondServiceError(c *gin.Context, err error, details any, context string) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		respondInternalError(c, err, context)
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code, Details: details})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidSourceFormat):
		return http.StatusBadRequest, "invalid_source_format"
	case errors.Is(err, catalog.ErrSourceUnreachable):
		return http.StatusBadGateway, "source_unreachable"
	case errors.Is(err, catalog.ErrDuplicateSKU):
		return http.StatusConflict, "duplicate_sku"
	case errors.Is(err, catalog.ErrMissingTitle):
		return http.StatusUnprocessableEntity, "missing_title"
	case errors.Is(err, services.ErrBookNotFound), errors.Is(err, services.ErrImportNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, ""
	}
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// respondPage sends one page of a listing.
func respondPage(c *gin.Context, data any, total int64, limit, offset int, count int) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+count) < total,
	})
}

// --- Parameter Parsing ---

// parsePagination reads limit and offset query parameters.
// Responds with a 400 error and returns false on malformed values.
func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondBadRequest(c, "invalid limit")
			return 0, 0, false
		}
		limit = min(n, maxPageSize)
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondBadRequest(c, "invalid offset")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

// parseBoolQuery reads an optional boolean query parameter.
// Returns nil when absent; responds with a 400 error on malformed values.
func parseBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}
