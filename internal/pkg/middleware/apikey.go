package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/tallytrack/internal/pkg/models"
	"github.com/piresc/tallytrack/internal/utils"
)

const (
	APIKeyHeader = "X-API-Key"
)

// APIKey guards internal endpoints. An empty configured key rejects every request.
func APIKey(cfg models.APIKeyConfig) echo.MiddlewareFunc {
	expected := []byte(cfg.Internal)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "API key is required")
			}

			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(apiKey), expected) != 1 {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "Invalid API key")
			}

			return next(c)
		}
	}
}
