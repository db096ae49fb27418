package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/library"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation messages
}

// SuccessResponse is a standard success response with a message.
type SuccessResponse struct {
	Message string `json:"message"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

func respondNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: library.ErrNotFound.Error(), Code: "not_found"})
}

// respondInternalError logs the error and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) [request %s]: %v", context, requestID(c), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
}

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondLibraryError maps a library error to its status code.
// It returns the metrics result label for the outcome.
func respondLibraryError(c *gin.Context, err error, context string) string {
	var validationErr *library.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validationErr.Error(),
			Code:    "validation",
			Details: validationErr.Details(),
		})
		return "invalid"
	case errors.Is(err, library.ErrNotFound):
		respondNotFound(c)
		return "not_found"
	case errors.Is(err, library.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: library.ErrUnauthorized.Error()})
		return "unauthorized"
	default:
		respondInternalError(c, err, context)
		return "error"
	}
}

// parseBookID reads the :id parameter. Anything that is not a positive
// integer cannot name a book, so it is answered with 404.
func parseBookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondNotFound(c)
		return 0, false
	}
	return uint(id), true
}
