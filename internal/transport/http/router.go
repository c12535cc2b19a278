package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/skovorodin/mini_shop/internal/handlers"
	"github.com/skovorodin/mini_shop/internal/middleware/auth"
)

type Deps struct {
	Guard          *auth.SessionGuard
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, d.Guard.RequireLogin)

	api := e.Group("/api", d.Guard.RequireLogin)

	api.POST("/products/add", d.ProductHandler.CreateProduct)
	api.GET("/products", d.ProductHandler.GetProducts)
	api.GET("/products/search", d.SearchHandler.Handler)
	api.GET("/products/:id", d.ProductHandler.GetProduct)
	api.PUT("/products/update/:id", d.ProductHandler.UpdateProduct)
	api.DELETE("/products/delete/:id", d.ProductHandler.DeleteProduct)

	api.POST("/cart/add/:product_id", d.CartHandler.AddToCart)
	api.GET("/cart", d.CartHandler.GetCart)
	api.DELETE("/cart/remove/:id", d.CartHandler.RemoveFromCart)
	api.POST("/cart/checkout", d.CartHandler.Checkout)
}
