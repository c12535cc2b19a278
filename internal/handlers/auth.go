package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skovorodin/mini_shop/internal/hash"
	"github.com/skovorodin/mini_shop/internal/models"
	"github.com/skovorodin/mini_shop/internal/mykafka"
	"github.com/skovorodin/mini_shop/internal/session"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Producer *mykafka.Producer

	// SecureCookie marks session cookies https-only; leave it off for the
	// plain-HTTP local default.
	SecureCookie bool
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
	}

	// Existence check and insert share one transaction; the unique index on
	// username backs it up under concurrent registrations.
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", req.Username).First(&existing).Error
		if err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return txErr
	}

	h.publish(c, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "user registered"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}

	// Unknown user and wrong password are indistinguishable on the wire.
	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	token, exp, err := h.Sessions.Issue(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(CreateCookie(session.CookieName, token, "/", exp, h.SecureCookie))

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "logged in"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	if err := h.Sessions.Revoke(c.Request().Context(), cookie.Value); err != nil {
		c.Logger().Errorf("session revoke error: %v", err)
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie(session.CookieName, "", "/", expired, h.SecureCookie))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
