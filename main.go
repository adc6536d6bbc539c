package main

import (
	"context"
	"errors"
	"flag"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/pixel-relay/adapters/hasher"
	"github.com/satriahrh/pixel-relay/adapters/http"
	"github.com/satriahrh/pixel-relay/adapters/llm"
	"github.com/satriahrh/pixel-relay/config"
	"github.com/satriahrh/pixel-relay/domain"
	"github.com/satriahrh/pixel-relay/usecase"
	"github.com/satriahrh/pixel-relay/utils/log"
)

func main() {
	usage := flag.Bool("usage", false, "print recognized environment variables and exit")
	flag.Parse()

	gotenv.Load()
	defer log.Sync()

	if *usage {
		if err := config.Usage(); err != nil {
			log.L().Fatal("usage", zap.Error(err))
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.L().Fatal("loading config", zap.Error(err))
	}
	if !cfg.HasAPIKey() {
		log.L().Warn("GEMINI_API_KEY is not set, chat requests will fail until it is configured")
	}

	driver, err := newDriver(cfg)
	if err != nil {
		log.L().Fatal("creating upstream driver", zap.Error(err))
	}
	svc := usecase.NewRelayService(driver, hasher.New(), usecase.Options{APIKey: cfg.GeminiAPIKey})
	e := http.NewServer(http.NewChatHandler(svc), http.ServerOptions{
		AllowOrigins: cfg.AllowOrigins,
		RateLimit:    cfg.RateLimit,
		BodyLimit:    cfg.BodyLimit,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.L().Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			log.L().Error("shutdown", zap.Error(err))
		}
	}()

	log.L().Info("starting server",
		zap.String("listen", cfg.HTTPListen),
		zap.String("driver", cfg.UpstreamDriver),
		zap.String("model", cfg.GeminiModel))
	log.L().Info("available endpoints",
		zap.Strings("routes", []string{"POST /api/chat", "GET /api/v1/health"}))

	if err := e.Start(cfg.HTTPListen); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.L().Fatal("server", zap.Error(err))
	}
}

// newDriver picks the upstream implementation. Without a key the relay
// never calls the driver, so the SDK client is not built.
func newDriver(cfg *config.Config) (domain.Llm, error) {
	switch cfg.UpstreamDriver {
	case config.DriverSDK:
		if !cfg.HasAPIKey() {
			return llm.NewGeminiREST("", llm.WithModel(cfg.GeminiModel)), nil
		}
		sdk, err := llm.NewGeminiSDK(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return sdk, nil
	case config.DriverREST, "":
		return llm.NewGeminiREST(cfg.GeminiAPIKey,
			llm.WithBaseURL(cfg.GeminiBaseURL),
			llm.WithModel(cfg.GeminiModel),
		), nil
	default:
		return nil, errors.New("unknown UPSTREAM_DRIVER " + cfg.UpstreamDriver)
	}
}
