package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

// ExpireRunner runs one expiry sweep for "now".
type ExpireRunner interface {
	RunOnce(ctx context.Context) (*service.SweepResult, error)
}

// CronHandler is the HTTP trigger of the expiry sweep.
type CronHandler struct {
	job ExpireRunner
}

func NewCronHandler(job ExpireRunner) *CronHandler {
	return &CronHandler{job: job}
}

// ExpireReservations handles POST (and, outside production, GET)
// /v1/cron/expire-reservations. Access is checked by CronSecret.
func (h *CronHandler) ExpireReservations(c echo.Context) error {
	res, err := h.job.RunOnce(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	msg := "no reservations to expire"
	if res.ExpiredCount > 0 {
		msg = fmt.Sprintf("%d reservation(s) expired", res.ExpiredCount)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":              msg,
		"ref_date":             res.RefDate,
		"current_hour":         res.CurrentHour,
		"expired_count":        res.ExpiredCount,
		"expired_reservations": res.Details,
	})
}
