package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"call-audit-go/internal/asr"
	"call-audit-go/internal/config"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/pipeline"
	"call-audit-go/internal/rubric"
	"call-audit-go/internal/server"
	"call-audit-go/internal/telemetry"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-audit-go").Info("starting service")

	cfg := config.Load()
	telemetry.Init()

	recognizer := asr.NewStubRecognizer(log)
	evaluator := rubric.NewEvaluator(cfg, log)
	svc := pipeline.NewService(cfg, log, recognizer, evaluator)
	api := server.New(cfg, log, svc)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
