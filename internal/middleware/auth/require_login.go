package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skovorodin/mini_shop/internal/models"
	"github.com/skovorodin/mini_shop/internal/session"
)

type SessionGuard struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

// RequireLogin resolves the session cookie, loads the user row it points at
// and places the user id in the request context. Every failure is the same
// 401 so callers cannot probe which step rejected them.
func (g *SessionGuard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}

		userID, err := g.Sessions.Resolve(c.Request().Context(), cookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}

		var user models.User
		if err := g.DB.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			return err
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		return next(c)
	}
}
