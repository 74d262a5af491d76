package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

// AdminHandler issues admin session tokens.
type AdminHandler struct {
	svc service.AdminService
}

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /v1/admin/login. The returned token goes in the
// Authorization header of the /v1/admin routes.
func (h *AdminHandler) Login(c echo.Context) error {
	var req adminLoginRequest
	if resp, ok := bindAndValidate(c, &req); !ok {
		return resp
	}
	sess, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}
