package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

var errInvalidClaims = errors.New("token is missing user or restaurant claims")

// Authenticator validates bearer tokens and places the caller's identity on
// the request context.
type Authenticator struct {
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
}

func newParser(methods ...string) *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods(methods),
		jwt.WithIssuer(services.TokenIssuer),
		jwt.WithAudience(services.TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
}

// NewHMACAuthenticator accepts tokens signed with the shared secret, as issued
// by the auth service.
func NewHMACAuthenticator(secret string) *Authenticator {
	key := []byte(secret)
	return &Authenticator{
		keyFunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		parser:  newParser(jwt.SigningMethodHS256.Alg()),
	}
}

// NewJWKSAuthenticator accepts tokens signed by keys published at jwksURL.
// Keys are refreshed in the background until Close is called.
func NewJWKSAuthenticator(jwksURL string, log *slog.Logger) (*Authenticator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warn("failed to refresh JWKS", "url", jwksURL, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return &Authenticator{
		keyFunc: jwks.Keyfunc,
		parser:  newParser("RS256", "ES256"),
		jwks:    jwks,
	}, nil
}

func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// Middleware returns the echo-jwt middleware configured for this authenticator.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: a.parse,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing token")
		},
	})
}

func (a *Authenticator) parse(c echo.Context, auth string) (interface{}, error) {
	claims := &services.TokenClaims{}
	token, err := a.parser.ParseWithClaims(auth, claims, a.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errInvalidClaims
	}
	restaurantID, err := uuid.Parse(claims.RestaurantID)
	if err != nil {
		return nil, errInvalidClaims
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.RestaurantIDKey, restaurantID)
	ctx = context.WithValue(ctx, common.RoleKey, string(claims.Role))
	c.SetRequest(c.Request().WithContext(ctx))

	return token, nil
}

// Identity is the authenticated caller of a management request.
type Identity struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
	Role         models.Role
}

// IdentityFrom reads the identity placed on the context by the authenticator.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	restaurantID, ok := common.GetRestaurantIDFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	role, _ := common.GetRoleFromContext(ctx)
	return Identity{UserID: userID, RestaurantID: restaurantID, Role: models.Role(role)}, true
}
