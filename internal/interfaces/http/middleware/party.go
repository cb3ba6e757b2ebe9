package middleware

import (
	"errors"
	"strings"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/comufarm/backend/internal/infrastructure/auth"
	"github.com/comufarm/backend/internal/infrastructure/logger"
	"github.com/comufarm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Party identification headers and context key
const (
	PartyIDHeader        = "X-Party-ID"
	PartyRoleHeader      = "X-Party-Role"
	IdempotencyKeyHeader = "Idempotency-Key"
	AuthHeaderKey        = "Authorization"
	BearerPrefix         = "Bearer "

	PartyKey = "party"
)

// PartyAuthConfig selects how callers are identified
type PartyAuthConfig struct {
	// JWT, when set, requires a bearer token and ignores party headers
	JWT *auth.JWTService
	// Development fills in a missing role or id from the defaults below
	Development  bool
	DevCompanyID string
	DevFarmerID  string
}

// PartyAuth resolves the calling party and stores it on the gin context and
// on the request context. Unidentified callers get 401.
func PartyAuth(cfg PartyAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			party marketplace.Party
			err   error
		)
		if cfg.JWT != nil {
			party, err = partyFromToken(c, cfg.JWT)
		} else {
			party, err = partyFromHeaders(c, cfg)
		}
		if err != nil {
			abortWithError(c, shared.CodeUnauthorized, err)
			return
		}

		c.Set(PartyKey, party)
		c.Request = c.Request.WithContext(logger.WithPartyID(c.Request.Context(), party.ID))
		c.Next()
	}
}

func partyFromToken(c *gin.Context, jwtService *auth.JWTService) (marketplace.Party, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return marketplace.Party{}, unauthorized("Authorization header is required")
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return marketplace.Party{}, unauthorized("Authorization header must use the Bearer scheme")
	}

	claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, BearerPrefix))
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return marketplace.Party{}, unauthorized("Token has expired")
		}
		return marketplace.Party{}, unauthorized("Invalid token")
	}
	return claims.Party()
}

func partyFromHeaders(c *gin.Context, cfg PartyAuthConfig) (marketplace.Party, error) {
	id := strings.TrimSpace(c.GetHeader(PartyIDHeader))
	role := marketplace.SenderType(strings.ToLower(strings.TrimSpace(c.GetHeader(PartyRoleHeader))))

	if cfg.Development {
		if role == "" {
			role = marketplace.SenderCompany
		}
		if id == "" {
			switch role {
			case marketplace.SenderCompany:
				id = cfg.DevCompanyID
			case marketplace.SenderFarmer:
				id = cfg.DevFarmerID
			}
		}
	}
	return marketplace.NewParty(id, role)
}

// GetParty returns the party resolved by PartyAuth
func GetParty(c *gin.Context) (marketplace.Party, bool) {
	v, ok := c.Get(PartyKey)
	if !ok {
		return marketplace.Party{}, false
	}
	party, ok := v.(marketplace.Party)
	return party, ok
}

// RequireRole lets only parties of the given role through
func RequireRole(role marketplace.SenderType) gin.HandlerFunc {
	return func(c *gin.Context) {
		party, ok := GetParty(c)
		if !ok {
			abortWithError(c, shared.CodeUnauthorized, unauthorized("Party is not identified"))
			return
		}
		if party.Role != role {
			abortWithError(c, shared.CodeForbidden,
				shared.NewDomainError(shared.CodeForbidden, "Only a "+role.String()+" may perform this action"))
			return
		}
		c.Next()
	}
}

func unauthorized(message string) error {
	return shared.NewDomainError(shared.CodeUnauthorized, message)
}

// abortWithError answers with err's own code when it carries one, else fallback
func abortWithError(c *gin.Context, fallback string, err error) {
	code := shared.CodeOf(err)
	if code == "" {
		code = fallback
	}
	c.AbortWithStatusJSON(dto.HTTPStatus(code), dto.NewErrorResponse(code, err.Error(), GetRequestID(c)))
}
