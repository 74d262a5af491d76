package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle. Students send their
// student id and password with every mutating call.
type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil reservation service passed to NewReservationHandler")
	}
	return &ReservationHandler{svc: svc}
}

type credentialsRequest struct {
	StudentID string `json:"student_id" validate:"required,studentid"`
	Password  string `json:"password" validate:"required"`
}

func (r credentialsRequest) creds() service.Credentials {
	return service.Credentials{StudentID: r.StudentID, Password: r.Password}
}

type createReservationRequest struct {
	credentialsRequest
	SeatID    int `json:"seat_id" validate:"required"`
	StartHour int `json:"start_hour" validate:"required"`
	EndHour   int `json:"end_hour" validate:"required"`
}

type extendReservationRequest struct {
	credentialsRequest
	ExtendHours int `json:"extend_hours" validate:"required"`
}

type reservationResponse struct {
	Message     string             `json:"message"`
	Reservation *model.Reservation `json:"reservation"`
}

// Create handles POST /v1/reservations. On success it returns 201 with the
// new ACTIVE reservation for today.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if resp, ok := bindAndValidate(c, &req); !ok {
		return resp
	}
	res, err := h.svc.Create(c.Request().Context(), service.CreateInput{
		Credentials: req.creds(),
		SeatID:      req.SeatID,
		StartHour:   req.StartHour,
		EndHour:     req.EndHour,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, reservationResponse{Message: "reservation created", Reservation: res})
}

// Extend handles PATCH /v1/reservations/extend.
func (h *ReservationHandler) Extend(c echo.Context) error {
	var req extendReservationRequest
	if resp, ok := bindAndValidate(c, &req); !ok {
		return resp
	}
	res, err := h.svc.Extend(c.Request().Context(), service.ExtendInput{
		Credentials: req.creds(),
		ExtendHours: req.ExtendHours,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, reservationResponse{Message: "reservation extended", Reservation: res})
}

// Checkout handles PATCH /v1/reservations/checkout. The same call cancels
// a reservation whose window has not started yet.
func (h *ReservationHandler) Checkout(c echo.Context) error {
	var req credentialsRequest
	if resp, ok := bindAndValidate(c, &req); !ok {
		return resp
	}
	res, err := h.svc.Checkout(c.Request().Context(), req.creds())
	if err != nil {
		return writeError(c, err)
	}
	msg := "checked out"
	if res.Status == model.StatusCancelled {
		msg = "reservation cancelled"
	}
	return c.JSON(http.StatusOK, reservationResponse{Message: msg, Reservation: res})
}

// List handles GET /v1/reservations. With ?seat_id (or ?seatId) it returns
// that seat's schedule for today, otherwise the day overview.
func (h *ReservationHandler) List(c echo.Context) error {
	raw := c.QueryParam("seat_id")
	if raw == "" {
		raw = c.QueryParam("seatId")
	}
	ctx := c.Request().Context()
	if raw == "" {
		overview, err := h.svc.DayOverview(ctx)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, overview)
	}
	seatID, err := strconv.Atoi(raw)
	if err != nil || seatID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.KindInvalidInput.String(), "message": "invalid seat id"})
	}
	schedule, err := h.svc.SeatSchedule(ctx, seatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, schedule)
}

// SeatBoard handles GET /v1/seats.
func (h *ReservationHandler) SeatBoard(c echo.Context) error {
	board, err := h.svc.SeatBoard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": board})
}
