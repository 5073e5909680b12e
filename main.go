package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/couchbase/gocb/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"linkedin-automator/internal/content"
	"linkedin-automator/internal/gemini"
	"linkedin-automator/internal/linkedin"
	"linkedin-automator/internal/posts/reader"
	"linkedin-automator/internal/posts/writer"
	"linkedin-automator/internal/server"
)

type Config struct {
	LinkedInClientID string `env:"LINKEDIN_CLIENT_ID,required"`

	LinkedInClientSecret string `env:"LINKEDIN_CLIENT_SECRET,required"`

	LinkedInRedirectURI string `env:"LINKEDIN_REDIRECT_URI,required"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`

	Host string `env:"HOST" envDefault:"0.0.0.0"`

	Port int `env:"PORT" envDefault:"8000"`

	ImagesDir string `env:"IMAGES_DIR" envDefault:"images"`

	Debug bool `env:"DEBUG" envDefault:"false"`

	// Couchbase settings are optional; when the endpoint is unset the
	// publish history store is disabled and nothing is persisted.
	CouchbaseEndpoint string `env:"COUCHBASE_ENDPOINT"`

	CouchbaseUsername string `env:"COUCHBASE_USERNAME"`

	CouchbasePassword string `env:"COUCHBASE_PASSWORD"`

	CouchbaseBucket string `env:"COUCHBASE_BUCKET"`
}

func main() {
	cfg, err := getConfig()
	if err != nil {
		log.Fatalf("unable to get config: %s", err)
	}

	logger, err := zap.NewDevelopment(
		zap.WithCaller(true),
	)
	if err != nil {
		log.Fatalf("unable to initialize logger: %s", err)
	}

	// side-effect store for generated images
	if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
		log.Fatalf("unable to create images directory: %s", err)
	}

	srv, err := getServer(logger, cfg)
	if err != nil {
		log.Fatalf("unable to initialize server: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	// handle interrupts
	g.Go(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		select {
		case <-gctx.Done():
			return nil
		case <-c:
			logger.Info("shutting down")
			cancel()
			return nil
		}
	})

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("error waiting for go routines to finish: %s", err)
	}
}

func getConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func getServer(logger *zap.Logger, cfg *Config) (*server.Server, error) {
	li, err := linkedin.NewClient(logger, linkedin.Config{
		ClientID:     cfg.LinkedInClientID,
		ClientSecret: cfg.LinkedInClientSecret,
		RedirectURI:  cfg.LinkedInRedirectURI,
	})
	if err != nil {
		return nil, err
	}

	gen, err := gemini.NewClient(logger, gemini.Config{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		return nil, err
	}

	contentSvc, err := content.NewService(logger, gen, cfg.ImagesDir)
	if err != nil {
		return nil, err
	}

	// interface-typed so a disabled store stays nil inside the server
	var (
		history       server.HistoryWriter
		historyReader server.HistoryReader
	)
	if cfg.CouchbaseEndpoint != "" {
		cluster, err := getCluster(cfg)
		if err != nil {
			return nil, err
		}

		history, err = writer.NewService(logger, cluster, cfg.CouchbaseBucket)
		if err != nil {
			return nil, err
		}

		historyReader, err = reader.NewService(logger, cluster, cfg.CouchbaseBucket)
		if err != nil {
			return nil, err
		}
	}

	return server.NewServer(
		logger,
		server.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			EnableCORS: true,
			Debug:      cfg.Debug,
		},
		li,
		contentSvc,
		history,
		historyReader,
		server.NewProm("linkedin_automator"),
	)
}

func getCluster(cfg *Config) (*gocb.Cluster, error) {
	c, err := gocb.Connect(
		"couchbase://"+cfg.CouchbaseEndpoint,
		gocb.ClusterOptions{
			Username: cfg.CouchbaseUsername,
			Password: cfg.CouchbasePassword,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to cluster: %w", err)
	}

	if err := c.WaitUntilReady(time.Second*5, nil); err != nil {
		return nil, fmt.Errorf("unable to wait until cluster ready: %w", err)
	}

	return c, nil
}
