package usage

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/auth"
	"equipment-tracker/internal/platform/paging"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects holders.RegisterValidators to have run.
func RegisterRoutes(r gin.IRoutes, svc *Service, pol auth.Policy) {
	h := &Handler{svc: svc}

	r.POST("/check_out", pol.Operator, h.CheckOut)
	r.POST("/check_in", pol.Operator, h.CheckIn)

	r.GET("/equipment/:equipment_id/location", h.CurrentLocation)
	r.GET("/usage/checked_out", h.ListOpen)
	r.GET("/usage/export", h.Export)
	r.GET("/usage", h.ListUsage)
	r.GET("/usage/:usage_id", h.GetUsage)
	r.GET("/stats", h.Stats)
}

func (h *Handler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.CheckOut(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/usage/"+strconv.FormatUint(res.UsageID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("invalid json: "+err.Error()))
		return
	}
	res, err := h.svc.CheckIn(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CurrentLocation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("equipment_id"), 10, 64)
	if err != nil {
		apierr.Respond(c, apierr.ErrInvalid("equipment_id must be a number"))
		return
	}
	res, err := h.svc.CurrentLocation(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListOpen(c *gin.Context) {
	items, err := h.svc.ListOpen(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /usage?equipment_id=&holder_type=&holder_id=&location_id=&open=&limit=&offset=&order=
func (h *Handler) ListUsage(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	p := paging.FromQuery(c, "desc")
	items, total, err := h.svc.ListUsage(c.Request.Context(), f, p)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.NewResult(items, total, p))
}

func (h *Handler) GetUsage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("usage_id"), 10, 64)
	if err != nil {
		apierr.Respond(c, apierr.ErrInvalid("usage_id must be a number"))
		return
	}
	res, err := h.svc.GetUsage(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /usage/export?encoding=utf8|sjis (same filters as /usage)
func (h *Handler) Export(c *gin.Context) {
	enc, err := ParseEncoding(c.Query("encoding"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	f, err := filterFromQuery(c)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	// 途中で失敗したときにエラーJSONを返せるよう、一度バッファに書き出す
	var buf bytes.Buffer
	if err := h.svc.ExportUsage(c.Request.Context(), &buf, f, enc); err != nil {
		apierr.Respond(c, err)
		return
	}
	contentType := "text/csv; charset=utf-8"
	if enc == EncodingShiftJIS {
		contentType = "text/csv; charset=Shift_JIS"
	}
	c.Header("Content-Disposition", `attachment; filename="equipment_usage.csv"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func filterFromQuery(c *gin.Context) (Filter, error) {
	var f Filter
	uintParam := func(name string, dst **uint64) error {
		v := c.Query(name)
		if v == "" {
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return apierr.ErrInvalid(name + " must be a number")
		}
		*dst = &n
		return nil
	}
	if err := uintParam("equipment_id", &f.EquipmentID); err != nil {
		return f, err
	}
	if err := uintParam("holder_id", &f.HolderID); err != nil {
		return f, err
	}
	if err := uintParam("location_id", &f.LocationID); err != nil {
		return f, err
	}
	if v := c.Query("holder_type"); v != "" {
		t, err := holders.ParseType(v)
		if err != nil {
			return f, apierr.ErrInvalid(err.Error())
		}
		f.HolderType = &t
	}
	if v := c.Query("open"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, apierr.ErrInvalid("open must be true or false")
		}
		f.Open = &b
	}
	return f, nil
}
