package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/dto"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T, router *gin.Engine) {
	t.Run("success", func(t *testing.T) {
		body := dto.RegisterRequest{
			Username: "testuser",
			Password: "password123",
			Name:     "Test User",
			RoomNo:   "113",
			Hostel:   "BH-1",
		}
		rr := doJSON(router, "POST", "/auth/register", body, "")

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.RegisterResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "testuser", resp.Username)
		assert.Equal(t, auth.RoleStudent, resp.Role)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		body := dto.RegisterRequest{Username: "dupuser", Password: "password123"}
		rr := doJSON(router, "POST", "/auth/register", body, "")
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doJSON(router, "POST", "/auth/register", body, "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing username", func(t *testing.T) {
		body := dto.RegisterRequest{Password: "password123"}
		rr := doJSON(router, "POST", "/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("password too short", func(t *testing.T) {
		body := dto.RegisterRequest{Username: "shortpw", Password: "short"}
		rr := doJSON(router, "POST", "/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLogin(t *testing.T, router *gin.Engine, jwtSecret string) {
	registerUser(t, router, "loginuser", "password123")

	t.Run("success", func(t *testing.T) {
		token := loginUser(t, router, "loginuser", "password123")

		claims, err := auth.ValidateToken(jwtSecret, token)
		require.NoError(t, err)
		assert.Equal(t, "loginuser", claims.Username)
		assert.Equal(t, auth.RoleStudent, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := dto.LoginRequest{Username: "loginuser", Password: "wrongpassword"}
		rr := doJSON(router, "POST", "/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("nonexistent user", func(t *testing.T) {
		body := dto.LoginRequest{Username: "nouser", Password: "password123"}
		rr := doJSON(router, "POST", "/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("seeded staff accounts", func(t *testing.T) {
		wardenToken := loginUser(t, router, "warden", "changeme")
		claims, err := auth.ValidateToken(jwtSecret, wardenToken)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleWarden, claims.Role)

		guardToken := loginUser(t, router, "guard", "changeme")
		claims, err = auth.ValidateToken(jwtSecret, guardToken)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleGuard, claims.Role)
	})

	t.Run("profile requires token", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/profile", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("profile", func(t *testing.T) {
		token := loginUser(t, router, "loginuser", "password123")
		rr := doJSON(router, "GET", "/api/profile", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ProfileResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "loginuser", resp.Username)
		assert.Equal(t, auth.RoleStudent, resp.Role)
	})
}
