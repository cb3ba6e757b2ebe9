package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/auth"
	"github.com/comufarm/backend/internal/infrastructure/config"
	"github.com/comufarm/backend/internal/infrastructure/logger"
	"github.com/comufarm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partyRouter(cfg PartyAuthConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), PartyAuth(cfg))
	handlers := append(extra, func(c *gin.Context) {
		party, _ := GetParty(c)
		c.JSON(http.StatusOK, gin.H{
			"id":      party.ID,
			"role":    party.Role,
			"context": logger.GetPartyID(c.Request.Context()),
		})
	})
	router.GET("/whoami", handlers...)
	return router
}

func whoami(t *testing.T, router *gin.Engine, headers map[string]string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := map[string]string{}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w.Code, body
}

func TestPartyAuth_Headers(t *testing.T) {
	router := partyRouter(PartyAuthConfig{})

	t.Run("identifies farmer", func(t *testing.T) {
		code, body := whoami(t, router, map[string]string{PartyIDHeader: "farmer-7", PartyRoleHeader: "Farmer"})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "farmer-7", body["id"])
		assert.Equal(t, "farmer", body["role"])
		assert.Equal(t, "farmer-7", body["context"])
	})

	t.Run("rejects missing id outside development", func(t *testing.T) {
		code, _ := whoami(t, router, map[string]string{PartyRoleHeader: "company"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		code, _ := whoami(t, router, map[string]string{PartyIDHeader: "x", PartyRoleHeader: "admin"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestPartyAuth_DevelopmentDefaults(t *testing.T) {
	router := partyRouter(PartyAuthConfig{
		Development:  true,
		DevCompanyID: "company_test",
		DevFarmerID:  "farmer_test",
	})

	code, body := whoami(t, router, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "company_test", body["id"])
	assert.Equal(t, "company", body["role"])

	_, body = whoami(t, router, map[string]string{PartyRoleHeader: "farmer"})
	assert.Equal(t, "farmer_test", body["id"])

	_, body = whoami(t, router, map[string]string{PartyIDHeader: "company-9"})
	assert.Equal(t, "company-9", body["id"])
}

func TestPartyAuth_Token(t *testing.T) {
	jwtService := auth.NewJWTService(config.AuthConfig{
		Enabled:    true,
		Secret:     "test-secret-that-is-long-enough-for-hs256",
		Issuer:     "comufarm",
		Expiration: time.Hour,
	})
	router := partyRouter(PartyAuthConfig{JWT: jwtService})

	token, _, err := jwtService.GenerateToken(marketplace.Party{ID: "company-1", Role: marketplace.SenderCompany})
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		code, body := whoami(t, router, map[string]string{AuthHeaderKey: BearerPrefix + token})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "company-1", body["id"])
	})

	t.Run("headers are ignored when tokens are required", func(t *testing.T) {
		code, _ := whoami(t, router, map[string]string{PartyIDHeader: "company-1", PartyRoleHeader: "company"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		code, _ := whoami(t, router, map[string]string{AuthHeaderKey: "Basic " + token})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("tampered token", func(t *testing.T) {
		code, _ := whoami(t, router, map[string]string{AuthHeaderKey: BearerPrefix + token + "x"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestRequireRole(t *testing.T) {
	router := partyRouter(PartyAuthConfig{}, RequireRole(marketplace.SenderFarmer))

	code, _ := whoami(t, router, map[string]string{PartyIDHeader: "f1", PartyRoleHeader: "farmer"})
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(PartyIDHeader, "c1")
	req.Header.Set(PartyRoleHeader, "company")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}
