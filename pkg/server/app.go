package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/usecase"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	applogger "MarketPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the HTTP API, the
// periodic recommendation refresh and the periodic trend run.
type App struct {
	cfg         *config.Config
	recs        *usecase.Recommender
	trend       *usecase.TrendPredictor
	pub         domrepo.Publisher
	chClient    *pkgch.Client
	redisClient *redis.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	l           *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	recs *usecase.Recommender,
	trend *usecase.TrendPredictor,
	pub domrepo.Publisher,
	chClient *pkgch.Client,
	redisClient *redis.Client,
) *App {
	return &App{
		cfg:         cfg,
		recs:        recs,
		trend:       trend,
		pub:         pub,
		chClient:    chClient,
		redisClient: redisClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := applogger.New(&applogger.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: a.cfg.Log.Output,
	})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	a.l = l
	a.recs.SetLogger(l)
	a.trend.SetLogger(l)

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	go a.recommendLoop(ctx)
	go a.trendLoop(ctx)
	l.Info("engine loops started",
		applogger.Strings("symbols", a.cfg.Engine.Symbols),
		applogger.Duration("recommend_interval", a.cfg.Engine.RecommendInterval),
		applogger.Duration("trend_interval", a.cfg.Engine.TrendInterval),
	)

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// recommendLoop refreshes the active recommendation set on a fixed interval.
// The first refresh runs immediately so the API has data after startup.
func (a *App) recommendLoop(ctx context.Context) {
	a.refreshOnce(ctx)

	ticker := time.NewTicker(a.cfg.Engine.RecommendInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refreshOnce(ctx)
		}
	}
}

func (a *App) refreshOnce(ctx context.Context) {
	batch, err := a.recs.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.l.Error("recommendation refresh failed", applogger.Error(err))
		}
		return
	}
	a.l.Info("recommendations refreshed", applogger.Int("count", len(batch)))
}

func (a *App) trendLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Engine.TrendInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pred, err := a.trend.Run(ctx)
			if err != nil {
				if ctx.Err() == nil {
					a.l.Error("trend run failed", applogger.Error(err))
				}
				continue
			}
			a.l.Info("trend prediction stored",
				applogger.String("type", string(pred.PredictionType)),
				applogger.Float64("confidence", pred.ConfidencePercent))
		}
	}
}

// shutdown gracefully stops the HTTP server and closes infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
