package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"table-order-kiosk/internal/api"
	"table-order-kiosk/internal/config"
	"table-order-kiosk/internal/db"
	httpapi "table-order-kiosk/internal/http"
	"table-order-kiosk/internal/localstore"
	"table-order-kiosk/internal/logger"
	"table-order-kiosk/internal/queue"
	"table-order-kiosk/internal/realtime"
	"table-order-kiosk/internal/services"
	"table-order-kiosk/internal/state"
	"table-order-kiosk/internal/storage"
	"table-order-kiosk/internal/tracking"
	"table-order-kiosk/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	production := cfg.Env == "production"

	backend, closeBackend := openLocalStore(ctx, cfg, log)
	defer closeBackend()
	store := localstore.New(backend, localstore.WithMaxAge(cfg.SessionMaxAge), localstore.WithLogger(log))
	appState := state.NewStore(state.State{})

	apiClient := api.New(api.Options{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.APITimeout,
		Credentials: services.NewCredentials(store, appState),
		Logger:      log,
	})

	var rt *realtime.Manager
	if cfg.RealtimeURL != "" {
		rt = realtime.NewManager(realtime.Options{
			URL:               cfg.RealtimeURL,
			ReconnectAttempts: cfg.RealtimeReconnectAttempts,
			ReconnectDelay:    cfg.RealtimeReconnectDelay,
			AckTimeout:        cfg.RealtimeAckTimeout,
			Logger:            log,
		})
		defer rt.Disconnect()
	} else {
		log.Info("realtime disabled (REALTIME_URL is empty); orders go over http")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err == nil {
			err = queue.EnsureEventsTopology(qc, cfg.EventsExchange)
			if err != nil {
				_ = qc.Close()
			}
		}
		if err != nil {
			if production {
				log.Fatal("rabbitmq setup failed", zap.Error(err))
			}
			log.Warn("rabbitmq setup failed; continuing without diner events", zap.Error(err))
		} else {
			defer qc.Close()
			events = queue.NewEventPublisher(qc, cfg.EventsExchange, log)
			log.Info("diner events enabled", zap.String("exchange", cfg.EventsExchange))
		}
	} else {
		log.Info("diner events disabled (RABBITMQ_URL is empty)")
	}

	var receipts services.Uploader
	if cfg.ObjectStoreEnabled() {
		objectStore, err := storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
		})
		if err != nil {
			log.Warn("object store unavailable; receipts are download-only", zap.Error(err))
		} else {
			receipts = objectStore
		}
	}

	diner := services.New(services.Deps{
		API:          apiClient,
		Realtime:     rt,
		Store:        store,
		State:        appState,
		Events:       events,
		Receipts:     receipts,
		ImageBaseURL: cfg.APIBaseURL,
		Tracking: tracking.Options{
			Interval: cfg.WSTickInterval,
			Resync:   cfg.RealtimeResyncOnReconnect,
		},
		Logger: log,
	})
	diner.Restore()

	wsServer := ws.New(diner, log)
	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(diner, log, cfg, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("kiosk api ready", zap.String("base", "/api"))
		log.Info("kiosk ws ready", zap.String("base", "/ws"))
		log.Info("kiosk listening", zap.String("addr", cfg.HTTPAddr), zap.String("backend", cfg.APIBaseURL))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

// openLocalStore picks the persistence backend. A failure leaves the kiosk
// running with an in-memory session that never expires.
func openLocalStore(ctx context.Context, cfg config.Config, log *zap.Logger) (localstore.Backend, func()) {
	switch cfg.LocalStoreDriver {
	case "none", "":
		log.Info("local store disabled; session kept in memory")
		return nil, func() {}
	case "memory":
		return localstore.NewMemoryBackend(), func() {}
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn("local store database unavailable; session kept in memory", zap.Error(err))
			return nil, func() {}
		}
		pg := localstore.NewPostgresBackend(pool, cfg.LocalStoreNamespace)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Warn("local store schema failed; session kept in memory", zap.Error(err))
			pool.Close()
			return nil, func() {}
		}
		log.Info("local store ready", zap.String("driver", "postgres"), zap.String("namespace", cfg.LocalStoreNamespace))
		return pg, pool.Close
	default:
		fb, err := localstore.NewFileBackend(cfg.LocalStorePath)
		if err != nil {
			log.Warn("local store file unavailable; session kept in memory", zap.Error(err))
			return nil, func() {}
		}
		log.Info("local store ready", zap.String("driver", "file"), zap.String("path", cfg.LocalStorePath))
		return fb, func() {}
	}
}
