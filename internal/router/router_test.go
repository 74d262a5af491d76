package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/config"
	"github.com/iliyamo/lab-seat-reservation/internal/handler"
	"github.com/iliyamo/lab-seat-reservation/internal/jobs"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

func newServer(t *testing.T, env string) *echo.Echo {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, loc)
	clk := clock.New(loc, 0, func() time.Time { return now })
	log := logger.Discard()

	store := repository.NewMemoryStore(loc)
	hasher := utils.NewBcrypt(bcrypt.MinCost)
	tokens := utils.NewTokenManager("router-secret", 5)
	reservations := service.NewReservationService(store, clk, model.DefaultRoster(), hasher, nil, log)
	students := service.NewStudentService(store, hasher, log)
	admins := service.NewAdminService(store, hasher, hasher, tokens, log)
	_, err = admins.SeedAdmin(context.Background(), "root", "toor")
	require.NoError(t, err)

	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	Register(e, Deps{
		Config:       config.Config{Env: env, CronSecret: "cron-secret"},
		Log:          log,
		Tokens:       tokens,
		Reservations: handler.NewReservationHandler(reservations),
		Students:     handler.NewStudentHandler(students),
		Admins:       handler.NewAdminHandler(admins),
		Cron:         handler.NewCronHandler(jobs.NewExpireJob(reservations, clk, log)),
	})
	return e
}

func call(e *echo.Echo, method, path, body, auth string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestReservationFlow(t *testing.T) {
	e := newServer(t, "dev")

	rec, _ := call(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(e, http.MethodPost, "/v1/students", `{"student_id":"20231234","password":"pass"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := call(e, http.MethodPost, "/v1/reservations",
		`{"student_id":"20231234","password":"pass","seat_id":1,"start_hour":10,"end_hour":12}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, body)

	rec, body = call(e, http.MethodGet, "/v1/seats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	seats := body["seats"].([]any)
	assert.Equal(t, "occupied", seats[0].(map[string]any)["status"])

	rec, body = call(e, http.MethodGet, "/v1/reservations?seat_id=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, body["reserved_slots"])

	rec, body = call(e, http.MethodPatch, "/v1/reservations/extend", `{"student_id":"20231234","password":"pass","extend_hours":1}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 13, body["reservation"].(map[string]any)["end_hour"])

	rec, body = call(e, http.MethodPatch, "/v1/reservations/checkout", `{"student_id":"20231234","password":"pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "checked out", body["message"])
}

func TestAdminRoutes(t *testing.T) {
	e := newServer(t, "dev")

	rec, _ := call(e, http.MethodGet, "/v1/admin/students", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := call(e, http.MethodPost, "/v1/admin/login", `{"username":"root","password":"toor"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)

	rec, _ = call(e, http.MethodPost, "/v1/admin/students", `{"student_id":"1","password":"abcd"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = call(e, http.MethodGet, "/v1/admin/students", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	id := body["students"].([]any)[0].(map[string]any)["id"].(float64)

	rec, _ = call(e, http.MethodDelete, "/v1/admin/students/"+jsonNumber(id), "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCronRoute(t *testing.T) {
	dev := newServer(t, "dev")
	rec, _ := call(dev, http.MethodPost, "/v1/cron/expire-reservations", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := call(dev, http.MethodGet, "/v1/cron/expire-reservations", "", "cron-secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["expired_count"])
	assert.EqualValues(t, 10, body["current_hour"])

	prod := newServer(t, "production")
	rec, _ = call(prod, http.MethodGet, "/v1/cron/expire-reservations", "", "cron-secret")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = call(prod, http.MethodPost, "/v1/cron/expire-reservations", "", "cron-secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
