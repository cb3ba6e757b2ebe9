package handler

import (
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/infrastructure/auth"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler issues party tokens. It is only mounted in development, where
// there is no external identity provider.
type AuthHandler struct {
	BaseHandler
	jwt *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{jwt: jwt}
}

// IssueTokenRequest names the party to issue a token for
type IssueTokenRequest struct {
	PartyID string `json:"party_id" binding:"required" example:"company_test"`
	Role    string `json:"role" binding:"required,oneof=company farmer" example:"company"`
}

// TokenResponse is a signed bearer token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"Bearer"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueToken godoc
// @ID           issueDevToken
// @Summary      Issue a development token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body IssueTokenRequest true "Party"
// @Success      201 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.DescribeBindingError(err))
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(marketplace.Party{
		ID:   req.PartyID,
		Role: marketplace.SenderType(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
