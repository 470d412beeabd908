package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/dto"
	"github.com/hosteline/epass-server/internal/gate"
	"github.com/hosteline/epass-server/internal/passes"
	"github.com/hosteline/epass-server/internal/token"
)

type GateHandler struct {
	engine *gate.Engine
}

func NewGateHandler(engine *gate.Engine) *GateHandler {
	return &GateHandler{engine: engine}
}

// Scan maps every verification outcome to a distinct code the gate client
// can present. Ambiguity is never reported as success.
func (h *GateHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ScanErrorResponse{Code: "bad_request", Error: err.Error()})
		return
	}

	result, err := h.engine.Scan(c.Request.Context(), []byte(req.Payload), passes.Movement(req.Mode))
	if err != nil {
		status, code := scanOutcome(err)
		c.JSON(status, dto.ScanErrorResponse{Code: code, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{
		PassID:     result.PassID,
		OwnerID:    result.OwnerID,
		Movement:   string(result.Movement),
		RecordedAt: result.RecordedAt,
	})
}

func scanOutcome(err error) (int, string) {
	switch {
	case errors.Is(err, token.ErrMalformedPayload):
		return http.StatusBadRequest, "malformed_payload"
	case errors.Is(err, token.ErrMissingField):
		return http.StatusBadRequest, "missing_field"
	case errors.Is(err, passes.ErrPassNotFound):
		return http.StatusNotFound, "pass_not_found"
	case errors.Is(err, passes.ErrNotApproved):
		return http.StatusForbidden, "not_approved"
	case errors.Is(err, gate.ErrFakePass):
		return http.StatusForbidden, "fake_pass"
	case errors.Is(err, passes.ErrAlreadyCheckedOut):
		return http.StatusConflict, "already_checked_out"
	case errors.Is(err, passes.ErrAlreadyCheckedIn):
		return http.StatusConflict, "already_checked_in"
	case errors.Is(err, passes.ErrNotCheckedOutYet):
		return http.StatusConflict, "not_checked_out_yet"
	case errors.Is(err, passes.ErrTerminalState):
		return http.StatusConflict, "terminal_state"
	case errors.Is(err, gate.ErrVerificationUnavailable):
		return http.StatusServiceUnavailable, "verification_unavailable"
	default:
		slog.Error("Unexpected scan failure", "error", err)
		return http.StatusInternalServerError, "internal_error"
	}
}
