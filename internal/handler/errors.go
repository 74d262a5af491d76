package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(k service.Kind) int {
	switch k {
	case service.KindInvalidInput, service.KindInvalidDuration, service.KindOutOfBounds,
		service.KindExtensionLimitReached, service.KindActiveReservationExists:
		return http.StatusBadRequest
	case service.KindAuthFailed:
		return http.StatusUnauthorized
	case service.KindSeatUnavailable:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindDuplicateDailyReservation, service.KindSeatConflict, service.KindStudentExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": kind, "message": text}. Causes of
// internal errors are never rendered.
func writeError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Message: "internal error"}
	}
	msg := se.Message
	if se.Kind == service.KindInternal {
		msg = "internal error"
	}
	return c.JSON(StatusFor(se.Kind), echo.Map{"error": se.Kind.String(), "message": msg})
}

// bindAndValidate decodes the body into req and validates it, writing the
// 400 response itself. ok is false when the handler should return resp.
func bindAndValidate(c echo.Context, req interface{}) (resp error, ok bool) {
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.KindInvalidInput.String(), "message": "invalid request body"}), false
	}
	if err := c.Validate(req); err != nil {
		body := echo.Map{"error": service.KindInvalidInput.String(), "message": "invalid request"}
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			body["details"] = verrs
		}
		return c.JSON(http.StatusBadRequest, body), false
	}
	return nil, true
}
