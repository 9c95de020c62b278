package delivery

import (
	"context"
	"time"

	"storefront/internal/domain"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SessionResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.Session, error)
}

type RouteRegistrar interface {
	RegisterRoutes(router gin.IRouter)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter builds the gin engine with the shared middleware chain and the
// given route groups.
func NewRouter(logger *logrus.Logger, origins []string, resolver SessionResolver, registrars ...RouteRegistrar) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))
	router.Use(cors.New(corsConfig(origins)))
	router.Use(SessionMiddleware(resolver, logger))

	for _, r := range registrars {
		r.RegisterRoutes(router)
	}
	return router
}
