package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"infusionconsole/internal/apiclient"
	"infusionconsole/internal/auth"
	"infusionconsole/internal/config"
	"infusionconsole/internal/console"
	"infusionconsole/internal/httpserver"
	"infusionconsole/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	client := apiclient.New(httpClient, logger)

	tokens := auth.NewTokenCache(auth.NewIssuer(), auth.Identity{
		Subject:    cfg.Subject,
		Roles:      auth.ParseRoles(cfg.Roles),
		Secret:     cfg.JWTSecret,
		TTLMinutes: cfg.TokenTTL,
	})
	if cfg.JWTSecret == config.DefaultSecret {
		logger.Warn("using the development JWT secret")
	}

	con := console.New(client, tokens, console.NewState(cfg.BaseURL), logger)

	limiter := httpserver.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	handler := httpserver.NewRouter(logger, con, cfg.Forms, limiter)
	server := httpserver.New(cfg.HTTPAddr, handler, logger)

	logger.Info("console configured", "api_base_url", cfg.BaseURL, "subject", cfg.Subject)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
