package response

import (
	"errors"
	"net/http"

	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON body for successful responses.
type Envelope struct {
	Data interface{} `json:"data"`
}

// ErrorBody is the uniform JSON body for failed responses.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes a 200 response with the standard envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Data: data})
}

// Created writes a 201 response with the standard envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

// Paginated writes a 200 response carrying items plus paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// BadRequest writes a 400 with a generic validation code.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Code: "validation_error", Message: message})
}

// Error maps a domain error onto the corresponding HTTP status. Unknown errors
// become opaque 500s so internals never leak to clients.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, ErrorBody{
			Code:    "internal_error",
			Message: "internal server error",
		})
		return
	}

	status := http.StatusBadRequest
	switch de.Kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		// The only kind a client should automatically retry.
		status = http.StatusConflict
	}

	c.JSON(status, ErrorBody{Code: de.Code, Message: de.Message})
}
