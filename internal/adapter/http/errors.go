package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loan-origination-backend/internal/apperror"
)

// writeErr translates the core taxonomy into transport codes. Unknown errors
// are treated as infrastructure failures and not leaked to the client.
func writeErr(c echo.Context, err error) error {
	kind := apperror.KindOf(err)
	status := http.StatusInternalServerError
	msg := err.Error()
	switch kind {
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindInvalidTransition, apperror.KindConflict:
		status = http.StatusConflict
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	case apperror.KindInfrastructure:
		status = http.StatusServiceUnavailable
		msg = "service temporarily unavailable"
	default:
		msg = "internal error"
	}
	body := map[string]string{"error": msg}
	if kind != "" {
		body["kind"] = string(kind)
	}
	return c.JSON(status, body)
}
