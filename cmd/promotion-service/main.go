package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artifactops/promotion-service/internal/blobstore"
	"github.com/artifactops/promotion-service/internal/config"
	"github.com/artifactops/promotion-service/internal/httpserver"
	"github.com/artifactops/promotion-service/internal/notify"
	"github.com/artifactops/promotion-service/internal/promolog"
	"github.com/artifactops/promotion-service/internal/service"
	"github.com/artifactops/promotion-service/internal/userconfig"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, err := blobstore.NewS3Store(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("s3 init: %v", err)
	}

	sinks := notify.Multi{notify.NewSlackWebhook(notify.SlackWebhookConfig{Timeout: cfg.NotifyTimeout})}
	if len(cfg.KafkaBrokers) > 0 {
		broadcast, err := notify.NewKafkaBroadcast(notify.KafkaBroadcastConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			WriteTimeout: cfg.NotifyTimeout,
		})
		if err != nil {
			log.Fatalf("kafka init: %v", err)
		}
		defer broadcast.Close()
		sinks = append(sinks, broadcast)
	} else {
		log.Printf("broadcast topic not configured; broadcast notifications disabled")
	}

	logs := promolog.NewStore(blobs, cfg.EnvBuckets())
	users := userconfig.NewLookup(blobs, cfg.ConfigBucket)
	svc := service.New(logs, blobs, users, sinks)
	server := httpserver.New(svc)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("promotion service listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	waitForShutdown(cancel, httpServer)
}

func waitForShutdown(cancel context.CancelFunc, srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
