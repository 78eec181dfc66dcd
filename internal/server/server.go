package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/resolvelab/coach/config"
	"github.com/resolvelab/coach/internal/interview"
	"github.com/resolvelab/coach/internal/telemetry"
	openai_provider "github.com/resolvelab/coach/provider/openai"
	"github.com/resolvelab/coach/session"
	"github.com/resolvelab/coach/session/inmemory"
	"github.com/resolvelab/coach/session/redisstore"
)

func Run(cfg *appconfig.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api key not configured (openai.api_key / COACH_OPENAI_API_KEY)")
	}
	prov := openai_provider.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)

	var store session.Store
	switch session.StoreType(cfg.Storage.Type) {
	case session.RedisStore:
		rdb, err := redisstore.Conn(context.Background(), cfg.Storage.Redis.Host, cfg.Storage.Redis.Port, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout)
		if err != nil {
			return err
		}
		store = redisstore.New(rdb, cfg.Storage.SessionTTL)
	case session.InMemoryStore, session.StoreType(""):
		store = inmemory.New(cfg.Storage.SessionTTL)
	default:
		return fmt.Errorf("unsupported session store type: %s", cfg.Storage.Type)
	}

	orch := interview.NewOrchestrator(interview.Config{
		Rounds:        cfg.Interview.Rounds,
		Model:         cfg.OpenAI.Model,
		PollInterval:  cfg.Interview.PollInterval,
		QuestionWait:  cfg.Interview.QuestionWait,
		SynthesisWait: cfg.Interview.SynthesisWait,
	}, prov, store, metrics, nil)

	ih := &InterviewHandler{Orch: orch, Logger: baseLogger}
	ih.Register(e)

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":5001"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
