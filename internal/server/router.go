// Package server assembles the HTTP routes.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ArtyomSF99/url-shortener/internal/config"
	"github.com/ArtyomSF99/url-shortener/internal/controllers"
	"github.com/ArtyomSF99/url-shortener/internal/jwt"
	"github.com/ArtyomSF99/url-shortener/internal/middleware"
	"github.com/ArtyomSF99/url-shortener/internal/models"
	"github.com/ArtyomSF99/url-shortener/internal/service"
)

type Deps struct {
	Config      *config.Config
	URLService  service.URLService
	AuthService service.AuthService
	JWTService  *jwt.JWTService
}

type Server struct {
	engine   *gin.Engine
	limiters []*middleware.RateLimiter
}

func New(d Deps) (*Server, error) {
	if err := models.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	cfg := d.Config
	s := &Server{}

	shortenerController := controllers.NewShortenerController(d.URLService)
	authController := controllers.NewAuthController(d.AuthService)
	qrcodeController := controllers.NewQRCodeController(d.URLService, cfg.BaseURL)

	generalRateLimiter := s.limiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authRateLimiter := s.limiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	shortenRateLimiter := s.limiter(cfg.RateLimitShortenRPS, cfg.RateLimitShortenBurst)
	redirectRateLimiter := s.limiter(cfg.RateLimitRedirectRPS, cfg.RateLimitRedirectBurst)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		gin.CustomRecovery(recoverPanic),
		middleware.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowMethods:     []string{"GET", "HEAD", "PUT", "POST", "PATCH"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	// Health check and metrics endpoints (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/:slug", redirectRateLimiter.LimitMiddleware(), shortenerController.RedirectToURL)

	requireAuth := middleware.AuthMiddleware(d.JWTService)

	api := router.Group("/api/v1")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
		}

		api.GET("/url", shortenerController.ListURLs)
		api.POST("/url", requireAuth, shortenRateLimiter.LimitMiddleware(), shortenerController.CreateShortURL)
		api.GET("/url/my-links", requireAuth, shortenerController.ListMyLinks)
		api.PATCH("/url/:id", requireAuth, shortenerController.UpdateURL)

		api.GET("/users/profile", requireAuth, authController.Profile)

		api.GET("/qrcode/:slug", qrcodeController.GenerateQRCode)
	}

	s.engine = router
	return s, nil
}

func (s *Server) limiter(rps float64, burst int) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(rate.Limit(rps), burst)
	s.limiters = append(s.limiters, rl)
	return rl
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close stops the rate limiter cleanup goroutines
func (s *Server) Close() {
	for _, rl := range s.limiters {
		rl.Stop()
	}
}

func recoverPanic(c *gin.Context, recovered any) {
	zap.L().Error("panic recovered",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: "An internal server error occurred",
		Code:  models.CodeInternal,
	})
}
