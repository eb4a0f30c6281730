package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-tracker/internal/platform/apierr"
)

type AuthService interface {
	Login(ctx context.Context, id, password string) (*Token, error)
	Register(ctx context.Context, id, password, role string) error
}

type Handler struct{ svc AuthService }

func RegisterRoutes(r gin.IRoutes, svc AuthService, pol Policy) {
	h := &Handler{svc: svc}
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", pol.Admin, h.Register)
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("id and password are required"))
		return
	}
	tok, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

type RegisterRequest struct {
	ID       string  `json:"id" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Role     *string `json:"role,omitempty"` // 未指定なら operator
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.ErrInvalid("id and password are required"))
		return
	}
	role := RoleOperator
	if req.Role != nil && *req.Role != "" {
		role = *req.Role
	}
	if err := h.svc.Register(c.Request.Context(), req.ID, req.Password, role); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": req.ID, "role": role})
}
