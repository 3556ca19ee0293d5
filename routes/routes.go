package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mazzeh-api/handlers"
	"mazzeh-api/media"
	"mazzeh-api/middleware"
	"mazzeh-api/models"
)

// Options carries what the router needs besides the handlers.
type Options struct {
	Tokens      *middleware.TokenIssuer
	Media       *media.Store
	CORSOrigins []string
	Log         *logrus.Entry
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter builds the engine with middleware and every route registered.
func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Log), cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Mazzeh Food Ordering API",
		})
	})
	if opts.Media != nil {
		r.Static(opts.Media.URLPrefix(), opts.Media.Root())
	}

	SetupRoutes(r, h, opts.Tokens)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, tokens *middleware.TokenIssuer) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/")
	{
		// Auth
		public.POST("/signup/customer", h.SignupCustomer)
		public.POST("/signup/restaurant", h.SignupRestaurant)
		public.POST("/token", h.Token)
		public.POST("/token/refresh", h.RefreshToken)

		// Restaurants & menus (no auth needed)
		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/items", h.GetMenu)

		public.GET("/order-states", h.GetOrderStates)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/")
	auth.Use(middleware.AuthRequired(tokens))
	{
		auth.PUT("/change-password", h.ChangePassword)
		auth.GET("/test-auth", h.TestAuth)
		auth.GET("/profile", h.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/customer")
	customer.Use(middleware.AuthRequired(tokens), middleware.CapabilityRequired(models.CapShop))
	{
		customer.GET("/profile", h.GetCustomerProfile)
		customer.PUT("/profile", h.UpdateCustomerProfile)

		customer.GET("/favorites", h.ListFavorites)
		customer.POST("/favorites", h.AddFavorite)
		customer.DELETE("/favorites/:restaurant_id", h.RemoveFavorite)

		customer.GET("/carts", h.ListCarts)
		customer.POST("/carts", h.CreateCart)
		customer.GET("/carts/:restaurant_id", h.GetCart)
		customer.DELETE("/carts/:restaurant_id", h.DeleteCart)
		customer.POST("/cart-items", h.AddCartItem)
		customer.PUT("/cart-items/:id", h.UpdateCartItem)
		customer.DELETE("/cart-items/:id", h.DeleteCartItem)

		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.POST("/orders/:id/review", h.ReviewOrder)
	}

	// ── Restaurant manager routes ──────────────────────────────────
	restaurant := r.Group("/restaurant")
	restaurant.Use(middleware.AuthRequired(tokens), middleware.CapabilityRequired(models.CapManageRestaurant))
	{
		restaurant.GET("/profile", h.GetMyRestaurant)
		restaurant.PUT("/profile", h.UpdateRestaurant)
		restaurant.PUT("/profile/photo", h.UploadRestaurantPhoto)

		// Menu management
		restaurant.GET("/items", h.ListMyItems)
		restaurant.POST("/items", h.AddItem)
		restaurant.PUT("/items/:id", h.UpdateItem)
		restaurant.DELETE("/items/:id", h.DeleteItem)
		restaurant.PUT("/items/:id/photo", h.UploadItemPhoto)

		// Order management
		restaurant.GET("/orders", h.GetRestaurantOrders)
		restaurant.PUT("/orders/:id/state", h.UpdateOrderState)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(tokens), middleware.CapabilityRequired(models.CapModerate))
	{
		admin.GET("/users", h.AdminGetAllUsers)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
		admin.PUT("/users/:id/active", h.AdminSetUserActive)
		admin.GET("/restaurants", h.AdminGetAllRestaurants)
		admin.PUT("/restaurants/:id/state", h.AdminSetRestaurantState)
		admin.PUT("/customers/:id/state", h.AdminSetCustomerState)
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.GET("/orders/export", h.AdminExportOrders)
		admin.PUT("/orders/:id/state", h.AdminForceOrderState)
	}
}
