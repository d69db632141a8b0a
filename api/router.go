// Package api exposes the storefront over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/judyrop/storefront/auth"
	"github.com/judyrop/storefront/catalog"
	"github.com/judyrop/storefront/metrics"
	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/orders"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Catalog *catalog.Service
	Orders  *orders.Service
	Auth    *auth.Service
	DB      Pinger
	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger

	AllowedOrigins []string
	AuthRateLimit  int
	AuthRateBurst  int
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(d.Logger, d.Metrics))
	r.Use(CORS(d.AllowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if d.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.DB.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	requireAuth := RequireAuth(d.Auth)
	requireAdmin := RequireRole(models.RoleAdmin)

	registerCatalog(r, d, requireAuth, requireAdmin)
	registerAuth(r, d, requireAuth)
	registerOrders(r, d, requireAuth)

	return r
}

func registerCatalog(r *gin.Engine, d Deps, requireAuth, requireAdmin gin.HandlerFunc) {
	// List categories
	r.GET("/categories", func(c *gin.Context) {
		categories, err := d.Catalog.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	})

	// Create category
	r.POST("/categories", requireAuth, requireAdmin, func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category, err := d.Catalog.CreateCategory(c.Request.Context(), req.Name, req.Slug)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	})

	// List active products
	r.GET("/products", func(c *gin.Context) {
		products, err := d.Catalog.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, products)
	})

	// Product detail
	r.GET("/products/:id", func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": catalog.ErrNotFound.Error()})
			return
		}
		product, err := d.Catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})

	// Admin product creation
	r.POST("/admin/products", requireAuth, requireAdmin, func(c *gin.Context) {
		var req struct {
			Name         string  `json:"name"`
			Description  *string `json:"description"`
			PriceCents   *int64  `json:"priceCents"`
			ImageURL     *string `json:"imageUrl"`
			CategorySlug string  `json:"categorySlug"`
			IsActive     *bool   `json:"isActive"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.PriceCents == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "priceCents is required"})
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		id, err := d.Catalog.CreateProduct(c.Request.Context(), catalog.NewProduct{
			Name:         req.Name,
			Description:  req.Description,
			PriceCents:   *req.PriceCents,
			ImageURL:     req.ImageURL,
			CategorySlug: req.CategorySlug,
			IsActive:     active,
		})
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAuth(r *gin.Engine, d Deps, requireAuth gin.HandlerFunc) {
	group := r.Group("/auth")
	if d.AuthRateLimit > 0 {
		group.Use(NewRateLimiter(d.AuthRateLimit, d.AuthRateBurst, d.Logger).Middleware())
	}

	group.POST("/register", func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := d.Auth.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		d.Logger.WithField("user_id", user.ID).Info("user registered")
		c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
	})

	group.POST("/login", func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := d.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})

	// Exchange an external OpenID Connect ID token for a local session
	group.POST("/oidc", func(c *gin.Context) {
		var req struct {
			IDToken string `json:"idToken"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		session, err := d.Auth.LoginWithIDToken(c.Request.Context(), req.IDToken)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, session)
	})

	// Who am I
	group.GET("/me", requireAuth, func(c *gin.Context) {
		user, err := d.Auth.Me(c.Request.Context(), currentClaims(c).UserID)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
	})
}

func registerOrders(r *gin.Engine, d Deps, requireAuth gin.HandlerFunc) {
	group := r.Group("/orders", requireAuth)

	// Create an order
	group.POST("", func(c *gin.Context) {
		var req orders.PlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims := currentClaims(c)
		order, err := d.Orders.Place(c.Request.Context(), claims.UserID, req)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		d.Logger.WithFields(logrus.Fields{
			"order_id":       order.ID,
			"user_id":        claims.UserID,
			"total_cents":    order.TotalCents,
			"payment_method": order.PaymentMethod,
		}).Info("order placed")
		c.JSON(http.StatusCreated, gin.H{"orderId": order.ID})
	})

	// Order history
	group.GET("", func(c *gin.Context) {
		list, err := d.Orders.List(c.Request.Context(), currentClaims(c).UserID)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	group.GET("/:id", func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": orders.ErrNotFound.Error()})
			return
		}
		order, err := d.Orders.Get(c.Request.Context(), currentClaims(c).UserID, id)
		if err != nil {
			respondError(c, d.Logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})
}
