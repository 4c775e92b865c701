package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/config"
	"github.com/aithena-cloud/aithena/internal/db"
	dbRedis "github.com/aithena-cloud/aithena/internal/db/redis"
	"github.com/aithena-cloud/aithena/internal/digest"
	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/feed"
	logpkg "github.com/aithena-cloud/aithena/internal/logger"
	"github.com/aithena-cloud/aithena/internal/metrics"
	"github.com/aithena-cloud/aithena/internal/repository/articlerepo"
	"github.com/aithena-cloud/aithena/internal/repository/embcache"
	"github.com/aithena-cloud/aithena/internal/repository/memstore"
	openaiTransport "github.com/aithena-cloud/aithena/internal/transport/openai"
	"github.com/aithena-cloud/aithena/internal/transport/ops"
	indexuc "github.com/aithena-cloud/aithena/internal/usecase/index"
	"github.com/aithena-cloud/aithena/internal/usecase/pipeline"
	"github.com/aithena-cloud/aithena/internal/usecase/ranker"
	"github.com/aithena-cloud/aithena/internal/usecase/retriever"
	"github.com/aithena-cloud/aithena/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting aithena digest pipeline",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("preferences", len(cfg.Preferences)),
	)

	ctx := logpkg.ContextWithLogger(context.Background(), logger)

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	// Article store and embedder chain depend on the driver: Redis gets the
	// FT.SEARCH-backed repository plus the embedding cache; memory runs the
	// brute-force store without a cache.
	var repo indexuc.Repository
	var dbStore db.Store
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = baseEmbedder

	switch cfg.Database.Driver {
	case "redis":
		dbStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer dbStore.Close()

		readyTimeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := dbStore.WaitForReady(ctx, readyTimeout); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		repo = articlerepo.New(dbStore, cfg.Storage.KeyPrefix)
		embedder = embcache.New(baseEmbedder, dbStore, cfg.Storage.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	case "memory":
		repo = memstore.New()
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}

	// Use case services
	indexSvc := indexuc.New(repo, embedder, cfg.Embedding.Dimensions)
	retrieverSvc := retriever.New(indexSvc)
	rankerSvc := ranker.New()

	var summarizer pipeline.Summarizer
	if cfg.Summary.APIKey != "" {
		summarizer = openaiTransport.NewSummarizer(&openaiTransport.SummarizerConfig{
			APIKey:  cfg.Summary.APIKey,
			BaseURL: cfg.Summary.BaseURL,
			Model:   cfg.Summary.Model,
			Style:   cfg.Summary.Style,
			Logger:  logger,
		})
	} else {
		logger.Info("No summary API key configured; digest will use truncated article text")
	}

	var source pipeline.Source
	if cfg.News.APIKey != "" {
		source = feed.NewNewsAPIClient(feed.NewsAPIConfig{
			APIKey:   cfg.News.APIKey,
			PageSize: cfg.News.PageSize,
		})
	} else {
		logger.Info("No news API key configured; using static demonstration articles")
		source = feed.NewStaticSource()
	}

	var deliverers []digest.Deliverer
	if cfg.Pipeline.OutputFile != "" {
		deliverers = append(deliverers, digest.NewFileDeliverer(cfg.Pipeline.OutputFile))
	}
	if cfg.Pipeline.SendEmail {
		deliverers = append(deliverers, digest.NewSMTPDeliverer(digest.SMTPConfig{
			Host:     cfg.SMTP.Server,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
			Password: cfg.SMTP.Password,
		}))
	}

	pipelineSvc := pipeline.New(retrieverSvc, rankerSvc, summarizer, source, deliverers)

	// Optional ops endpoint (health, metrics, latest digest)
	var opsServer *ops.Server
	var srv *http.Server
	if cfg.HTTP.Port > 0 {
		var pinger ops.Pinger
		if dbStore != nil {
			pinger = dbStore
		}
		opsServer = ops.NewServer(pinger)
		srv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      opsServer.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("Starting ops HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Ops HTTP server error", zap.Error(err))
			}
		}()
	}

	prefs := make([]pipeline.PreferenceInput, len(cfg.Preferences))
	for i, p := range cfg.Preferences {
		prefs[i] = pipeline.PreferenceInput{Name: p.Name, Keywords: p.Keywords}
	}

	d, report, err := pipelineSvc.Run(ctx, prefs, pipeline.Params{
		KPerPreference:     cfg.Pipeline.KPerPreference,
		QuotaPerPreference: cfg.Pipeline.QuotaPerPreference,
		UserName:           cfg.Pipeline.UserName,
	})
	if err != nil {
		logger.Fatal("Pipeline run failed", zap.Error(err))
	}
	logger.Info("Digest generated",
		zap.Int("sections", len(d.Sections)),
		zap.Int("items", d.ItemCount()),
		zap.Bool("delivered", report.Delivered),
	)

	if opsServer != nil {
		if html, err := digest.RenderHTML(d); err == nil {
			opsServer.SetDigest(html)
		}

		// Keep serving health/metrics/digest until interrupted.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	}

	logger.Info("Done")
}
