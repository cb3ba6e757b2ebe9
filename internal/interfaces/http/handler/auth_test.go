package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comufarm/backend/internal/infrastructure/auth"
	"github.com/comufarm/backend/internal/infrastructure/config"
	"github.com/comufarm/backend/internal/interfaces/http/dto"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_IssueToken(t *testing.T) {
	jwtService := auth.NewJWTService(config.AuthConfig{
		Enabled:    true,
		Secret:     "test-secret-key-at-least-32-bytes!!",
		Issuer:     "comufarm-test",
		Expiration: time.Hour,
	})
	h := NewAuthHandler(jwtService)

	engine := gin.New()
	engine.POST("/auth/token", h.IssueToken)
	engine.GET("/whoami", middleware.PartyAuth(middleware.PartyAuthConfig{JWT: jwtService}), func(c *gin.Context) {
		party, _ := middleware.GetParty(c)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(party.ID+"/"+party.Role.String()))
	})

	post := func(body any) (*httptest.ResponseRecorder, dto.Response) {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	t.Run("issued token authenticates", func(t *testing.T) {
		w, resp := post(IssueTokenRequest{PartyID: "farmer_kim", Role: "farmer"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var token TokenResponse
		decode(t, resp, &token)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token.AccessToken)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "farmer_kim/farmer")
	})

	t.Run("unknown role", func(t *testing.T) {
		w, resp := post(map[string]string{"party_id": "x", "role": "admin"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
	})

	t.Run("missing party", func(t *testing.T) {
		w, _ := post(map[string]string{"role": "company"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
