// README: Entry point; loads config, wires services, starts the HTTP server.
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

	"yahu/internal/ai"
	"yahu/internal/config"
	httptransport "yahu/internal/http"
	"yahu/internal/infra"
	"yahu/internal/maps"
	"yahu/internal/modules/booking"
	"yahu/internal/modules/dialog"
	"yahu/internal/modules/places"
	"yahu/internal/modules/pricing"
	"yahu/internal/modules/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	geoSvc, err := maps.NewGeoService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}
	routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	llm, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer llm.Close()

	ttl := time.Duration(cfg.Dialog.SessionTTLMinutes) * time.Minute
	var sessionStore session.Store
	switch cfg.Session.Backend {
	case "redis":
		sessionStore = session.NewRedisStore(infra.NewRedis(cfg.Redis.Addr), ttl)
	default:
		memStore := session.NewMemoryStore(ttl)
		go memStore.RunEviction(ctx)
		sessionStore = memStore
	}

	bookingStore := booking.NewStore(dbPool)
	bookingSvc := booking.NewService(bookingStore)

	engine := dialog.NewEngine(dialog.Deps{
		Store:    sessionStore,
		Places:   places.NewMatcher(geoSvc, cfg.Dialog),
		Geo:      geoSvc,
		Routes:   routeSvc,
		Fares:    pricing.NewService(),
		Bookings: bookingSvc,
		LLM:      llm,
	})

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Engine:   engine,
		Bookings: bookingSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("yahu listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
