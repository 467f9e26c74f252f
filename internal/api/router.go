// Package api serves the risk engine over HTTP with gin.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lepto-risk-workers/internal/chat"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/validation"
	"lepto-risk-workers/internal/engine"
	"lepto-risk-workers/internal/surveillance"
)

type RouterConfig struct {
	Engine    *engine.Engine
	Session   *chat.Session
	Validator *validation.Validator
	Logger    logger.Logger
	// Surveillance serves /api/leptospirosis. Nil leaves those routes out.
	Surveillance *surveillance.Service
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
	Mode  string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	session := cfg.Session
	if session == nil {
		session = chat.NewSession(cfg.Engine, log)
	}

	h := &Handlers{
		engine:       cfg.Engine,
		session:      session,
		surveillance: cfg.Surveillance,
		validator:    cfg.Validator,
		ready:        cfg.Ready,
		logger:       log,
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(log))
	r.Use(RequestLogger(log, "/health", "/ready", "/metrics"))

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a := r.Group("/api")
	a.GET("/prediction", h.Prediction)

	risk := a.Group("/riskanalysis")
	risk.GET("", h.Records)
	risk.GET("/countries", h.Countries)
	risk.GET("/predictions/:country", h.CountryPredictions)
	risk.GET("/map", h.Map)
	risk.POST("/query", h.Query)
	risk.POST("/compare", h.Compare)
	risk.POST("/chat", h.Chat)
	risk.POST("/chat/messages", h.SessionMessage)
	risk.GET("/chat/transcript", h.Transcript)

	if h.surveillance != nil {
		lepto := a.Group("/leptospirosis")
		lepto.GET("", h.SurveillanceRecords)
		lepto.GET("/table", h.SurveillanceTable)
		lepto.GET("/map", h.SurveillanceMap)
		lepto.GET("/countries", h.SurveillanceCountries)
		lepto.GET("/series/:code", h.SurveillanceSeries)
	}

	return r
}
