package equipment

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

	r.POST("/equipment", pol.Admin, h.Create)
	r.GET("/equipment", h.List)
	r.GET("/equipment/:equipment_id", h.Get)
	r.PATCH("/equipment/:equipment_id", pol.Admin, h.Update)
	r.POST("/equipment/:equipment_id/archive", pol.Admin, h.Archive)
	r.DELETE("/equipment/:equipment_id", pol.Admin, h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/equipment/"+strconv.FormatUint(res.EquipmentID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := equipmentID(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /equipment?category=&q=&include_archived=true
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if v := c.Query("category"); v != "" {
		q.Category = &v
	}
	if v := c.Query("q"); v != "" {
		q.NameLike = &v
	}
	q.IncludeArchived, _ = strconv.ParseBool(c.Query("include_archived"))

	p := paging.FromQuery(c, "asc")
	items, total, err := h.svc.List(c.Request.Context(), q, p)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewResult(items, total, p))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := equipmentID(c)
	if !ok {
		return
	}
	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Archive(c *gin.Context) {
	id, ok := equipmentID(c)
	if !ok {
		return
	}
	res, err := h.svc.Archive(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := equipmentID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Equipment deleted"})
}

func equipmentID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("equipment_id"), 10, 64)
	if err != nil || id == 0 {
		apierr.Respond(c, apierr.ErrInvalid("equipment_id must be a positive number"))
		return 0, false
	}
	return id, true
}
