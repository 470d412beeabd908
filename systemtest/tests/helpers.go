package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/dto"
	"github.com/stretchr/testify/require"
)

func doJSON(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func registerUser(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	rr := doJSON(router, "POST", "/auth/register", dto.RegisterRequest{
		Username: username,
		Password: password,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp dto.RegisterResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func loginUser(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	rr := doJSON(router, "POST", "/auth/login", dto.LoginRequest{
		Username: username,
		Password: password,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
