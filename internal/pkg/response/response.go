package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes shared by every handler.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeRateUnavailable   = "RATE_UNAVAILABLE"
	CodeSlotUnavailable   = "SLOT_UNAVAILABLE"
	CodeQuoteMismatch     = "QUOTE_MISMATCH"
	CodeBookingConflict   = "BOOKING_CONFLICT"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeInternal          = "INTERNAL_ERROR"
)

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   body(code, message, nil),
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   body(code, message, details),
	})
}

// Invalid answers 400 VALIDATION_ERROR. fields, when not nil, maps request
// fields to what is wrong with them.
func Invalid(c *gin.Context, message string, fields any) {
	ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, message, fields)
}

// Internal records err on the context for middleware.ErrorLogger and answers
// 500 without leaking the cause.
func Internal(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, CodeInternal, message)
}

// Abort writes an error and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

func body(code, message string, details any) gin.H {
	h := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		h["details"] = details
	}
	return h
}
