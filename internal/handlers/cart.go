package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/skovorodin/mini_shop/internal/models"
	"github.com/skovorodin/mini_shop/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// CartLine is one cart row joined with the current product name and price.
// Prices are read at display time, not snapshotted at add time.
type CartLine struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Quantity  uint    `json:"quantity"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("product_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var prod models.Product
	if err := h.DB.First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	// Repeated adds create distinct lines rather than bumping quantity.
	item := models.CartItem{
		UserID:    userID,
		ProductID: prod.ID,
		Quantity:  1,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": prod.ID,
		"itemID":    item.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "item added to cart"})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	lines := make([]CartLine, 0)
	if err := h.DB.Table("cart_items").
		Select("cart_items.id, cart_items.product_id, cart_items.quantity, products.name, products.price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Scan(&lines).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lines)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return err
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return err
	}

	h.publish(c, map[string]any{
		"type":   "cart_item_removed",
		"userID": userID,
		"itemID": item.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "item removed from cart"})
}

func (h *CartHandler) Checkout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var total float64
	var count int

	// Read-then-delete-all runs in one transaction so a concurrent add can
	// not slip between the total and the wipe.
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var lines []struct {
			Price    float64
			Quantity uint
		}
		if err := tx.Table("cart_items").
			Select("products.price, cart_items.quantity").
			Joins("JOIN products ON products.id = cart_items.product_id").
			Where("cart_items.user_id = ?", userID).
			Scan(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		for _, line := range lines {
			total += line.Price * float64(line.Quantity)
		}
		count = len(lines)

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return txErr
	}

	h.publish(c, map[string]any{
		"type":   "cart_checked_out",
		"userID": userID,
		"items":  count,
		"total":  total,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("checkout complete, total: %.2f", total),
		"total":   total,
	})
}
