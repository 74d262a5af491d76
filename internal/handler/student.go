package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

// StudentHandler serves self-registration and the admin roster routes.
type StudentHandler struct {
	svc service.StudentService
}

func NewStudentHandler(svc service.StudentService) *StudentHandler {
	return &StudentHandler{svc: svc}
}

type studentRequest struct {
	StudentID string `json:"student_id" validate:"required,studentid"`
	Password  string `json:"password" validate:"required,min=4"`
}

type studentResponse struct {
	ID        uint64 `json:"id"`
	StudentID string `json:"student_id"`
	CreatedAt string `json:"created_at"`
}

func toStudentResponse(s *model.Student) studentResponse {
	return studentResponse{ID: s.ID, StudentID: s.StudentID, CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00")}
}

// Register handles POST /v1/students.
func (h *StudentHandler) Register(c echo.Context) error {
	var req studentRequest
	if resp, ok := bindAndValidate(c, &req); !ok {
		return resp
	}
	st, err := h.svc.Register(c.Request().Context(), req.StudentID, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "student registered", "student": toStudentResponse(st)})
}

// List handles GET /v1/admin/students.
func (h *StudentHandler) List(c echo.Context) error {
	list, err := h.svc.ListStudents(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"students": list, "total": len(list)})
}

// Add handles POST /v1/admin/students.
func (h *StudentHandler) Add(c echo.Context) error {
	var req studentRequest
	if resp, ok := bindAndValidate(c, &req); !ok {
		return resp
	}
	st, err := h.svc.AddStudent(c.Request().Context(), req.StudentID, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	c.Logger().Infof("admin %s added student %s", middleware.AdminUsername(c), st.StudentID)
	return c.JSON(http.StatusCreated, echo.Map{"message": "student added", "student": toStudentResponse(st)})
}

// Delete handles DELETE /v1/admin/students/:id where id is the numeric
// user id from the list route.
func (h *StudentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": service.KindInvalidInput.String(), "message": "invalid user id"})
	}
	if err := h.svc.DeleteStudent(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "student deleted", "id": id})
}
