package utils

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// TokenContextKey is where the auth middleware stores the caller's *TokenData.
const TokenContextKey = "token_data"

var ErrNoTokenData = errors.New("no token data in request context")

type TokenData struct {
	Sub      string
	Email    string
	Username string
}

func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	data, ok := c.Get(TokenContextKey).(*TokenData)
	if !ok || data == nil || data.Sub == "" {
		return nil, ErrNoTokenData
	}
	return data, nil
}
