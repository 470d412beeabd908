package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPassLifecycle drives a pass from request to closure through the public
// API: a resident requests it, the warden approves it, and the guard records
// the exit and entry scans off the rendered payload.
func TestPassLifecycle(t *testing.T, router *gin.Engine) {
	registerUser(t, router, "resident1", "password123")
	studentToken := loginUser(t, router, "resident1", "password123")
	wardenToken := loginUser(t, router, "warden", "changeme")
	guardToken := loginUser(t, router, "guard", "changeme")

	start := time.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	rr := doJSON(router, "POST", "/api/passes", dto.CreatePassRequest{
		Reason:    "weekend home visit",
		StartTime: start,
		EndTime:   end,
	}, studentToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var pass dto.PassResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pass))
	assert.Equal(t, "pending", pass.Status)
	require.NotEmpty(t, pass.ID)

	t.Run("token unavailable while pending", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/passes/"+pass.ID+"/token", nil, studentToken)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("warden sees pending queue", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/passes/pending", nil, wardenToken)
		require.Equal(t, http.StatusOK, rr.Code)

		var list dto.ListPassesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		ids := make([]string, 0, len(list.Passes))
		for _, p := range list.Passes {
			ids = append(ids, p.ID)
		}
		assert.Contains(t, ids, pass.ID)
	})

	t.Run("student cannot approve", func(t *testing.T) {
		rr := doJSON(router, "PUT", "/api/passes/"+pass.ID+"/decision",
			dto.DecidePassRequest{Decision: "approved"}, studentToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	rr = doJSON(router, "PUT", "/api/passes/"+pass.ID+"/decision",
		dto.DecidePassRequest{Decision: "approved"}, wardenToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var decided dto.PassResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decided))
	assert.Equal(t, "approved", decided.Status)

	t.Run("decision is final", func(t *testing.T) {
		rr := doJSON(router, "PUT", "/api/passes/"+pass.ID+"/decision",
			dto.DecidePassRequest{Decision: "rejected"}, wardenToken)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	rr = doJSON(router, "GET", "/api/passes/"+pass.ID+"/token", nil, studentToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tokenResp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.Payload)

	t.Run("student cannot scan", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/gate/scan",
			dto.ScanRequest{Payload: tokenResp.Payload, Mode: "exit"}, studentToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	rr = doJSON(router, "POST", "/api/gate/scan",
		dto.ScanRequest{Payload: tokenResp.Payload, Mode: "exit"}, guardToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var scan dto.ScanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scan))
	assert.Equal(t, pass.ID, scan.PassID)
	assert.Equal(t, "exit", scan.Movement)
	assert.False(t, scan.RecordedAt.IsZero())

	t.Run("repeated exit rejected", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/gate/scan",
			dto.ScanRequest{Payload: tokenResp.Payload, Mode: "exit"}, guardToken)
		require.Equal(t, http.StatusConflict, rr.Code)

		var scanErr dto.ScanErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scanErr))
		assert.Equal(t, "already_checked_out", scanErr.Code)
	})

	rr = doJSON(router, "POST", "/api/gate/scan",
		dto.ScanRequest{Payload: tokenResp.Payload, Mode: "entry"}, guardToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(router, "GET", "/api/passes/"+pass.ID, nil, studentToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var closed dto.PassResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &closed))
	assert.Equal(t, "closed", closed.Status)
	require.NotNil(t, closed.ActualStart)
	require.NotNil(t, closed.ActualEnd)
	assert.False(t, closed.ActualEnd.Before(*closed.ActualStart))

	t.Run("closed pass no longer scans", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/gate/scan",
			dto.ScanRequest{Payload: tokenResp.Payload, Mode: "entry"}, guardToken)
		require.Equal(t, http.StatusForbidden, rr.Code)

		var scanErr dto.ScanErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scanErr))
		assert.Equal(t, "not_approved", scanErr.Code)
	})
}

// TestGateRejections exercises the verification checks that never reach a
// movement: bad payloads, unknown passes, and tampered fields.
func TestGateRejections(t *testing.T, router *gin.Engine) {
	registerUser(t, router, "resident2", "password123")
	studentToken := loginUser(t, router, "resident2", "password123")
	wardenToken := loginUser(t, router, "warden", "changeme")
	guardToken := loginUser(t, router, "guard", "changeme")

	start := time.Now().Add(time.Hour)
	rr := doJSON(router, "POST", "/api/passes", dto.CreatePassRequest{
		Reason:    "medical appointment",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}, studentToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var pass dto.PassResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pass))

	rr = doJSON(router, "PUT", "/api/passes/"+pass.ID+"/decision",
		dto.DecidePassRequest{Decision: "approved"}, wardenToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	scanCode := func(t *testing.T, payload string) (int, string) {
		t.Helper()
		rr := doJSON(router, "POST", "/api/gate/scan",
			dto.ScanRequest{Payload: payload, Mode: "exit"}, guardToken)
		var scanErr dto.ScanErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scanErr))
		return rr.Code, scanErr.Code
	}

	t.Run("malformed payload", func(t *testing.T) {
		status, code := scanCode(t, "not json at all")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "malformed_payload", code)
	})

	t.Run("missing field", func(t *testing.T) {
		status, code := scanCode(t, `{"pass_id":"`+pass.ID+`"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "missing_field", code)
	})

	t.Run("unknown pass", func(t *testing.T) {
		payload, err := json.Marshal(map[string]string{
			"pass_id":  "00000000-0000-0000-0000-000000000000",
			"owner_id": pass.OwnerID,
			"reason":   pass.Reason,
		})
		require.NoError(t, err)
		status, code := scanCode(t, string(payload))
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "pass_not_found", code)
	})

	t.Run("tampered reason", func(t *testing.T) {
		payload, err := json.Marshal(map[string]string{
			"pass_id":  pass.ID,
			"owner_id": pass.OwnerID,
			"reason":   "a different reason",
		})
		require.NoError(t, err)
		status, code := scanCode(t, string(payload))
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "fake_pass", code)
	})
}
