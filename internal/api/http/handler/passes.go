package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/dto"
	"github.com/hosteline/epass-server/internal/api/http/middleware"
	"github.com/hosteline/epass-server/internal/passes"
)

type PassHandler struct {
	passService *passes.Service
}

func NewPassHandler(passService *passes.Service) *PassHandler {
	return &PassHandler{passService: passService}
}

func (h *PassHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req dto.CreatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pass, err := h.passService.Create(c.Request.Context(), identity, passes.CreateInput{
		Reason:    req.Reason,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, passes.ErrEmptyReason),
			errors.Is(err, passes.ErrReasonTooLong),
			errors.Is(err, passes.ErrInvalidWindow),
			errors.Is(err, passes.ErrWindowTooFar):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, passes.ErrOverlappingPass):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, passes.ErrNotPermitted):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.Error("Failed to create pass", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, passResponse(pass))
}

func (h *PassHandler) ListOwn(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	list, err := h.passService.ListOwn(c.Request.Context(), identity)
	if err != nil {
		slog.Error("Failed to list passes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, listResponse(list))
}

func (h *PassHandler) ListPending(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	list, err := h.passService.ListPending(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, passes.ErrNotPermitted) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		slog.Error("Failed to list pending passes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, listResponse(list))
}

func (h *PassHandler) Get(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	pass, err := h.passService.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, passes.ErrPassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "pass not found"})
		case errors.Is(err, passes.ErrNotPermitted):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.Error("Failed to get pass", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, passResponse(pass))
}

func (h *PassHandler) Decide(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req dto.DecidePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pass, err := h.passService.Decide(c.Request.Context(), identity, c.Param("id"), passes.Status(req.Decision))
	if err != nil {
		switch {
		case errors.Is(err, passes.ErrPassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "pass not found"})
		case errors.Is(err, passes.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "pass has already been decided"})
		case errors.Is(err, passes.ErrTerminalState):
			c.JSON(http.StatusConflict, gin.H{"error": "pass is in a terminal state"})
		case errors.Is(err, passes.ErrNotPermitted):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.Error("Failed to decide pass", "error", err, "pass_id", c.Param("id"))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, passResponse(pass))
}

func (h *PassHandler) RenderToken(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	payload, err := h.passService.RenderToken(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, passes.ErrPassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "pass not found"})
		case errors.Is(err, passes.ErrNotApproved):
			c.JSON(http.StatusConflict, gin.H{"error": "pass is not approved"})
		case errors.Is(err, passes.ErrNotPermitted):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.Error("Failed to render token", "error", err, "pass_id", c.Param("id"))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{Payload: string(payload)})
}

func passResponse(p *passes.Pass) dto.PassResponse {
	return dto.PassResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Reason:      p.Reason,
		Status:      string(p.Status),
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		ActualStart: p.ActualStart,
		ActualEnd:   p.ActualEnd,
		CreatedAt:   p.CreatedAt,
	}
}

func listResponse(list []passes.Pass) dto.ListPassesResponse {
	result := make([]dto.PassResponse, len(list))
	for i := range list {
		result[i] = passResponse(&list[i])
	}
	return dto.ListPassesResponse{Passes: result, Count: len(result)}
}
