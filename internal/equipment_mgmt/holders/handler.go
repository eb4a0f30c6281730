package holders

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/auth"
	"equipment-tracker/internal/platform/paging"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, pol auth.Policy) {
	h := &Handler{svc: svc}

	r.POST("/students", pol.Admin, h.CreateStudent)
	r.GET("/students", h.ListStudents)
	r.GET("/students/:student_id", h.GetStudent)
	r.DELETE("/students/:student_id", pol.Admin, h.DeleteStudent)

	r.POST("/faculty", pol.Admin, h.CreateFaculty)
	r.GET("/faculty", h.ListFaculty)
	r.GET("/faculty/:faculty_id", h.GetFaculty)
	r.DELETE("/faculty/:faculty_id", pol.Admin, h.DeleteFaculty)
}

// ===== students =====

func (h *Handler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.CreateStudent(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/students/"+strconv.FormatUint(res.StudentID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetStudent(c *gin.Context) {
	id, ok := pathID(c, "student_id")
	if !ok {
		return
	}
	res, err := h.svc.GetStudent(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListStudents(c *gin.Context) {
	p := paging.FromQuery(c, "asc")
	items, total, err := h.svc.ListStudents(c.Request.Context(), p)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewResult(items, total, p))
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	id, ok := pathID(c, "student_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), Ref{Type: TypeStudent, ID: id}); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

// ===== faculty =====

func (h *Handler) CreateFaculty(c *gin.Context) {
	var req CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.CreateFaculty(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/faculty/"+strconv.FormatUint(res.FacultyID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetFaculty(c *gin.Context) {
	id, ok := pathID(c, "faculty_id")
	if !ok {
		return
	}
	res, err := h.svc.GetFaculty(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListFaculty(c *gin.Context) {
	p := paging.FromQuery(c, "asc")
	items, total, err := h.svc.ListFaculty(c.Request.Context(), p)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewResult(items, total, p))
}

func (h *Handler) DeleteFaculty(c *gin.Context) {
	id, ok := pathID(c, "faculty_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), Ref{Type: TypeFaculty, ID: id}); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Faculty deleted"})
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierr.Respond(c, apierr.ErrInvalid(name+" must be a positive number"))
		return 0, false
	}
	return id, true
}
