package app

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"mdr-travel/go_backend/internal/app/config"
	apphttp "mdr-travel/go_backend/internal/app/http"
	"mdr-travel/go_backend/internal/domain/ai/quoter"
	"mdr-travel/go_backend/internal/domain/quote/pdf/gofpdf"
	"mdr-travel/go_backend/internal/infra/db/postgres"
	"mdr-travel/go_backend/internal/infra/kv"
	"mdr-travel/go_backend/internal/infra/kv/memory"
	"mdr-travel/go_backend/internal/infra/kv/redis"
	"mdr-travel/go_backend/internal/infra/mailer"
	"mdr-travel/go_backend/internal/infra/objectstore"
	"mdr-travel/go_backend/internal/logger"
	"mdr-travel/go_backend/internal/service"
	"mdr-travel/go_backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

func Run() {
	cfg := config.MustLoad()
	lg := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	st := store.New(backend, store.Options{MaxBytes: cfg.StoreMaxBytes, Logger: lg})

	deps := service.Deps{
		Store:  st,
		PDF:    gofpdf.New(),
		Quoter: quoter.New(quoter.Options{BaseURL: cfg.OpenAIBaseURL, Logger: lg}),
	}
	mcfg := mailer.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
	}
	if m := mailer.New(mcfg); m.Enabled() {
		deps.Mailer = m
	} else {
		lg.Warn("SMTP not configured; quote emails disabled")
	}
	ocfg := objectstore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}
	if ocfg.Enabled() {
		snap, err := objectstore.New(ocfg)
		if err != nil {
			log.Fatalf("objectstore: %v", err)
		}
		deps.Snapshots = snap
	} else {
		lg.Warn("MINIO_ENDPOINT not configured; backup snapshots disabled")
	}

	svc := service.New(deps, service.Options{
		Region:      cfg.PhoneRegion,
		SignBaseURL: cfg.SignBaseURL,
		OpenAIKey:   cfg.OpenAIAPIKey,
		OpenAIModel: cfg.OpenAIModel,
		Logger:      lg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apphttp.NewRouter(cfg, svc, lg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("listening", slog.String("addr", cfg.HTTPAddr), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	stop()
	closeBackend()
	if err != nil {
		log.Fatalf("server: %v", err)
	}
	lg.Info("stopped")
}

// openBackend picks the KV backend for STORE_DRIVER. The returned func
// releases it.
func openBackend(ctx context.Context, cfg config.Config) (kv.Backend, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		b := postgres.NewKV(db)
		if err := b.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	case "redis":
		b, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}
