package delivery

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

// Notice is a short toast shown after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

const variantDestructive = "destructive"

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
	Notice  *Notice     `json:"Notice,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

// NoticeResponse is SuccessResponse with a toast attached.
func NoticeResponse(c *gin.Context, statusCode int, message string, data interface{}, notice Notice) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
		Notice:  &notice,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// FailWithNotice reports err with the status mapped from its kind. fallback
// is the toast shown for errors without a specific one.
func FailWithNotice(c *gin.Context, err error, message string, fallback Notice) {
	status := mapErrorToStatus(err)
	notice := fallback
	if status == http.StatusUnauthorized {
		notice = Notice{Title: "Please Login", Description: "You need to login to continue", Variant: variantDestructive}
	}
	_ = c.Error(err)
	c.JSON(status, Response{
		Status:  "Fail",
		Message: message + ": " + err.Error(),
		Notice:  &notice,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBackendUnavailable), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
