package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func CreateCookie(name string, value string, path string, expTime time.Time, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return cookie
}

// currentUserID reads the user id placed in the context by RequireLogin.
func currentUserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return id, nil
}
