package middleware

import (
	"context"
	"log"

	"hauntedadmin/internal/common"
	"hauntedadmin/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// SessionMiddleware validates provider-issued access tokens and resolves
// them to local admin accounts.
type SessionMiddleware struct {
	authSvc services.AuthService
	keyFunc jwt.Keyfunc
}

// NewSessionMiddleware builds the token verifier. When jwksURL is set the
// provider's JWKS endpoint is polled for signing keys; otherwise tokens
// are verified with the shared HS256 secret.
func NewSessionMiddleware(authSvc services.AuthService, jwksURL, hmacSecret string) (*SessionMiddleware, error) {
	m := &SessionMiddleware{authSvc: authSvc}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, err
		}
		m.keyFunc = jwks.Keyfunc
	} else {
		secret := []byte(hmacSecret)
		m.keyFunc = func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}
	}

	return m, nil
}

// RequireSession rejects requests without a valid bearer token and puts
// the resolved admin's ID and email on the request context.
func (m *SessionMiddleware) RequireSession() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: m.parseAndResolve,
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	})
}

func (m *SessionMiddleware) parseAndResolve(c echo.Context, auth string) (interface{}, error) {
	token, err := jwt.Parse(auth, m.keyFunc)
	if err != nil || !token.Valid {
		return nil, echojwt.ErrJWTInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echojwt.ErrJWTInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, echojwt.ErrJWTInvalid
	}

	admin, err := m.authSvc.ResolveAdmin(c.Request().Context(), sub)
	if err != nil {
		return nil, err
	}

	ctx := context.WithValue(c.Request().Context(), common.AdminIDKey, admin.ID)
	ctx = context.WithValue(ctx, common.AdminEmailKey, admin.Email)
	c.SetRequest(c.Request().WithContext(ctx))

	return token, nil
}
