package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"price-tracker/database"
	"price-tracker/middleware"
	"price-tracker/models"
	"price-tracker/service"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	products *service.ProductService
	receipts *service.ReceiptService
	auth     *service.AuthService
	maxBody  int64
}

// NewHandlers creates new HTTP handlers. maxUploadBytes is the decoded
// image ceiling; raw receipt bodies may be somewhat larger because of
// multipart framing and base64.
func NewHandlers(products *service.ProductService, receipts *service.ReceiptService, auth *service.AuthService, maxUploadBytes int64) *Handlers {
	return &Handlers{
		products: products,
		receipts: receipts,
		auth:     auth,
		maxBody:  2*maxUploadBytes + 64*1024,
	}
}

// RegisterRoutes mounts every endpoint on router. requireAuth guards the
// product and receipt routes.
func (h *Handlers) RegisterRoutes(router gin.IRouter, requireAuth gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)

	auth := router.Group("/auth")
	{
		auth.POST("/sign-in", h.SignIn)
		auth.POST("/respond-to-challenge", h.RespondToChallenge)
		auth.POST("/refresh", h.RefreshToken)
		auth.GET("/user", h.GetUser)
	}

	products := router.Group("/products", requireAuth)
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	router.POST("/receipts/analyze", requireAuth, h.AnalyzeReceipt)
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "price-tracker",
	})
}

// userID returns the authenticated subject, writing 401 if there is none
func userID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.UserIDKey)
	if id == "" {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "Unauthorized"})
		return "", false
	}
	return id, true
}

// respondError maps a service error to its status code and envelope
func respondError(c *gin.Context, err error) {
	var reqErr *service.RequestError
	switch {
	case errors.As(err, &reqErr):
		c.JSON(reqErr.Status, models.MessageResponse{Message: reqErr.Message})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Product not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "Forbidden"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, models.MessageResponse{Message: "Product already exists"})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}
