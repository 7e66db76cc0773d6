package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"or-extraction-service/internal/app"
	"or-extraction-service/internal/config"
	"or-extraction-service/internal/corrections"
	"or-extraction-service/internal/events"
	apihttp "or-extraction-service/internal/http"
	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/observability"
	"or-extraction-service/internal/predict"
	"or-extraction-service/internal/service/extraction"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("application start failed")
	}
	defer application.Shutdown()

	// Label scheme is loaded once and shared read-only.
	scheme := labels.Default()
	if cfg.Pipeline.LabelSchemePath != "" {
		var err error
		scheme, err = labels.Load(cfg.Pipeline.LabelSchemePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Pipeline.LabelSchemePath).Msg("failed to load label scheme")
		}
	}
	log.Info().Int("types", len(scheme.Types())).Msg("label scheme loaded")

	// Cheap pre-check before constructing the predictor.
	predictCfg := predict.Config{
		ModelDir:            cfg.Pipeline.ModelDir,
		ConfidenceThreshold: cfg.Pipeline.ConfidenceThreshold,
	}
	if v := predict.Validate(cfg.Pipeline.Provider, predictCfg); !v.Available {
		log.Fatal().Str("provider", cfg.Pipeline.Provider).Str("message", v.Message).
			Msg("predictor not available")
	}
	predictor, err := predict.New(cfg.Pipeline.Provider, predictCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct predictor")
	}

	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicExtraction: cfg.Kafka.TopicExtraction,
		TopicCorrection: cfg.Kafka.TopicCorrection,
		Principal:       cfg.Kafka.Principal,
	})
	defer publisher.Close()

	extractor := extraction.NewHandler(predictor, scheme, publisher)
	store := corrections.NewStore(cfg.Data.CorrectionsFile, scheme)

	obsServer := observability.NewServer(":" + cfg.Service.MetricsPort)
	obsServer.Start()

	router := apihttp.NewRouter(cfg, scheme, extractor, store, publisher)
	server := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("OR extraction service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("observability shutdown failed")
	}
}
