package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"presenceboard/internal/auth"
	"presenceboard/internal/config"
	"presenceboard/internal/customization"
	"presenceboard/internal/database/db_client"
	"presenceboard/internal/directory"
	"presenceboard/internal/events"
	"presenceboard/internal/feed"
	"presenceboard/internal/feed/actioncable"
	"presenceboard/internal/http/boardhandler"
	"presenceboard/internal/http/http_server"
	"presenceboard/internal/hubvisits"
	"presenceboard/internal/notes"
	"presenceboard/internal/presence"
	"presenceboard/internal/redis/redis_client"
	"presenceboard/internal/redis/watcher/notewatcher"
	"presenceboard/internal/render"
	"presenceboard/internal/rooms"
	"presenceboard/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (room notes)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisNotesHost, int(cfg.RedisNotesPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client (login sessions)
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Presence state: registry, store, event bus, reconciler
	registry := rooms.Default()
	store := presence.NewStore()
	bus := events.NewBus()
	rc := presence.NewReconciler(store, registry, bus)

	noteStore := notes.NewStore(redisClient)
	customs := customization.NewStore()

	// 6. View building and fragment rendering
	builder := render.NewBuilder(store, registry, noteStore, customs)
	renderer, err := render.NewHTML()
	if err != nil {
		Log.Fatal("template-parse", zap.Error(err))
	}

	// 7. Background: note-expiry watcher ➜ room re-render
	go notewatcher.Run(ctx, redisClient, bus)

	// 8. Background: upstream presence feed ➜ reconciler
	normalizer := feed.NewNormalizer(rc)
	cableURL := fmt.Sprintf("%s?app_id=%s&app_secret=%s",
		cfg.CableURL, cfg.CableAppID, cfg.CableAppSecret)
	cable := actioncable.NewClient(cableURL, cfg.CableOrigin, "ApiChannel", normalizer)
	go cable.Run(ctx)

	// 9. Directory API: identity lookups and hub-visit sync
	dir := directory.NewClient(cfg.DirectoryBaseURL)
	refresher := hubvisits.NewRefresher(dir, store, rc)

	// 10. Auth: OAuth flow, Postgres-backed sessions, request identity
	sessions := auth.NewSessionStore(pgDb)
	oauth := auth.NewOAuth(cfg.OAuthClientID, cfg.OAuthClientSecret,
		cfg.OAuthAuthURL, cfg.OAuthTokenURL, cfg.BaseURL+"/oauthRedirect")
	mw := auth.NewMiddleware(sessions, oauth, dir, cfg.SecretAuthToken, cfg.SecureHost)

	// 11. WS fan-out server
	wsSrv := ws.NewServer(bus, builder, renderer, customs)

	// 12. HTTP handlers + server
	handler := boardhandler.New(registry, builder, renderer, noteStore, customs,
		bus, rc, refresher, sessions, oauth, dir, mw)
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, handler, mw)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
