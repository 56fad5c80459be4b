package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servihub/marketplace/internal/config"
	"github.com/servihub/marketplace/internal/db"
	"github.com/servihub/marketplace/internal/httpapi"
	"github.com/servihub/marketplace/internal/notify"
	"github.com/servihub/marketplace/internal/relay"
	"github.com/servihub/marketplace/internal/store/rabbitmq"
	"github.com/servihub/marketplace/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.NameCacheTTL)

	// notifications degrade to no-ops when the broker is down; the server
	// still serves chat and reviews
	var pub notify.Publisher
	if p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Printf("rabbitmq unavailable, notifications disabled: %v", err)
	} else {
		pub = p
		defer p.Close()
	}

	registry := relay.NewRegistry()

	r := httpapi.NewRouter(gdb, cfg, rds, pub, registry)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
