package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medipal/config"
	"medipal/db"
	"medipal/handlers"
	"medipal/logger"
	"medipal/middleware"
	"medipal/services"
)

const maxBodyBytes = 1 << 20

func main() {
	log := logger.New(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}
	log = logger.New(cfg.LogLevel)

	keys := services.NewKeySet(cfg.JWKSURL)
	verifier := services.NewVerifier(keys, cfg.Issuer())
	store := db.NewStore(cfg.DBPath)
	prov := services.NewProvisioner(time.Now)
	h := handlers.New(store, prov, log, time.Now)

	r := gin.Default()
	r.Use(corsMiddleware(cfg.CORSOrigin))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", handlers.Health)

	me := r.Group("/me", middleware.AuthRequired(verifier, log))
	{
		me.GET("", h.GetMe)
		me.PATCH("/profile", h.PatchProfile)
	}

	log.Info("starting server", "port", cfg.Port, "jwks", cfg.JWKSURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if origin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{origin}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return cors.New(corsCfg)
}
