package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/config"
	"intervuex-backend-go/internal/db"
	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/httpapi"
	"intervuex-backend-go/internal/interview"
	"intervuex-backend-go/internal/jobs"
	"intervuex-backend-go/internal/memory"
	"intervuex-backend-go/internal/migrations"
	"intervuex-backend-go/internal/proctor"
	"intervuex-backend-go/internal/resumes"
	"intervuex-backend-go/internal/speech"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	if err := migrations.Apply(database, "migrations"); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	completer, err := gateway.NewOpenAICompleter(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		logger.Fatal("language model misconfigured", zap.Error(err))
	}
	gw := gateway.New(completer, logger.Named("gateway"), time.Duration(cfg.LLMTimeoutSeconds)*time.Second)

	mem := &memory.Service{DB: database, Gw: gw, Log: logger.Named("memory")}
	orch := interview.NewOrchestrator(database, gw, mem, logger.Named("interview"))
	recorder := proctor.NewRecorder(database, logger.Named("proctor"),
		time.Duration(cfg.ProctorDebounceSeconds)*time.Second)
	resumeSvc := &resumes.Service{DB: database, Gw: gw, Log: logger.Named("resumes")}

	var stt speech.Transcriber
	var tts speech.Synthesizer
	if cfg.SpeechAPIKey != "" {
		client := speech.NewClient(cfg.SpeechAPIKey)
		stt, tts = client, client
	} else {
		logger.Warn("speech api key not set, transcription and synthesis disabled")
	}

	scheduler := jobs.NewScheduler(database, logger.Named("jobs"),
		time.Duration(cfg.SessionIdleMinutes)*time.Minute,
		time.Duration(cfg.MetricsSampleSeconds)*time.Second,
		cfg.MetricsDiskPath)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("scheduler failed", zap.Error(err))
	}
	defer scheduler.Stop()

	server := httpapi.NewServer(database, cfg, orch, mem, recorder, resumeSvc, stt, tts, logger.Named("http"))

	addr := ":8080"
	if value := os.Getenv("PORT"); value != "" {
		addr = ":" + value
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	logger.Info("shutdown complete")
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
