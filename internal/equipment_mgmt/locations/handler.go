package locations

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
	r.POST("/locations", pol.Admin, h.Create)
	r.GET("/locations", h.List)
	r.GET("/locations/:location_id", h.Get)
	r.DELETE("/locations/:location_id", pol.Admin, h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/locations/"+strconv.FormatUint(res.LocationID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := locationID(c)
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

func (h *Handler) List(c *gin.Context) {
	p := paging.FromQuery(c, "asc")
	items, total, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewResult(items, total, p))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := locationID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted"})
}

func locationID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("location_id"), 10, 64)
	if err != nil || id == 0 {
		apierr.Respond(c, apierr.ErrInvalid("location_id must be a positive number"))
		return 0, false
	}
	return id, true
}
