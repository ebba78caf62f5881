package auth

import (
	"clinic/cmd/internal/utils"
	"clinic/cmd/internal/utils/apierror"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type TokenVerifier interface {
	Verify(raw string) (*utils.TokenData, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's identity for utils.ParseTokenDataCtx.
func Middleware(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
			}

			data, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				log.Debugf("rejected bearer token: %v", err)
				return c.JSON(apierror.InvalidAuthTokenError.Code(), apierror.InvalidAuthTokenError)
			}

			c.Set(utils.TokenContextKey, data)
			return next(c)
		}
	}
}

// DevMiddleware authenticates every request as sub. Only for local runs.
func DevMiddleware(sub string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(utils.TokenContextKey, &utils.TokenData{Sub: sub, Username: sub})
			return next(c)
		}
	}
}
