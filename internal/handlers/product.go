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
	"github.com/skovorodin/mini_shop/internal/service/search"
)

const defaultDescription = "No description available"

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Search   *search.Service
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	// Pointer fields distinguish "absent" from zero values, so an explicit
	// price of 0 is still a valid request.
	var req struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}
	if req.Name == nil || *req.Name == "" || req.Price == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}

	prod := models.Product{
		Name:        *req.Name,
		Price:       *req.Price,
		Description: defaultDescription,
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}

	if err := h.DB.Create(&prod).Error; err != nil {
		return err
	}

	h.Search.IndexProduct(c.Request().Context(), prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "product added"})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	items := make([]models.ProductSummary, 0)
	if err := h.DB.Model(&models.Product{}).
		Select("id, name, price").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var req struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Description *string  `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing fields")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	// Partial update: only the supplied fields change.
	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return err
	}

	h.Search.IndexProduct(c.Request().Context(), prod)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	var prod models.Product
	if err := h.DB.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return err
	}

	// Cart rows referencing the product go with it, so carts never hold
	// dangling product ids.
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", prod.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&prod).Error
	})
	if txErr != nil {
		return txErr
	}

	h.Search.RemoveProduct(c.Request().Context(), prod.ID)
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
