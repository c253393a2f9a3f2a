package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cwchanap/grus-server/config"
	"github.com/cwchanap/grus-server/crypto"
	"github.com/cwchanap/grus-server/game"
	"github.com/cwchanap/grus-server/logger"
	"github.com/cwchanap/grus-server/migrations"
	"github.com/cwchanap/grus-server/storage"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		// Same-origin requests and non-browser clients send no Origin.
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	if config.Debug {
		logger.SetDebug()
	}
	if config.Envs.GIN_MODE != "" {
		gin.SetMode(config.Envs.GIN_MODE)
	}

	if config.Envs.FRONTEND_ORIGIN == "" {
		logger.Fatal("Missing FRONTEND_ORIGIN")
	}
	if config.Envs.POSTGRES_URL == "" {
		logger.Fatal("Missing POSTGRES_URL")
	}
	if config.Envs.REDIS_URL == "" {
		logger.Fatal("Missing REDIS_URL")
	}
	if len(config.Envs.JWT_KEY) == 0 {
		logger.Fatal("Missing JWT_KEY")
	}

	migrations.Migrate(config.Envs.POSTGRES_URL)

	pgRepo, err := storage.NewPostgresRepo(context.Background(), config.Envs.POSTGRES_URL)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pgRepo.Close()

	stateStore, err := storage.NewRedisStateStore(context.Background(), config.Envs.REDIS_URL)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer stateStore.Close()

	tokenManager := crypto.NewJWTManager(config.Envs.JWT_KEY, time.Hour*24*7)

	idGen := game.NewIdGen()
	tickerGen := game.NewTickerGen()
	lobby := game.NewLobby(&idGen, &tickerGen)

	lobbyStarted := make(chan struct{})
	go lobby.LobbyActor(lobbyStarted)
	<-lobbyStarted

	deps := game.RoomDeps{
		Registry: game.NewRegistry(),
		Limiter:  game.NewRateLimiter(),
		States:   stateStore,
		Players:  pgRepo,
		Rooms:    pgRepo,
		Words:    game.NewWordBank(),
	}
	gameHandler := game.NewGameHandler(lobby, pgRepo, &idGen, tokenManager, deps)

	r := CreateServer([]string{config.Envs.FRONTEND_ORIGIN})
	{
		gameGroup := r.Group("/game")
		gameGroup.Use(gameHandler.RequireSessionMiddleware())

		gameGroup.GET("/create", gameHandler.CreateGameHandler)
		gameGroup.GET("/join/:roomid", gameHandler.JoinGameHandler)
		gameGroup.GET("/games", gameHandler.GetPublicGamesHandler)
	}

	port := config.Envs.PORT
	if port == "" {
		port = "5000"
	}
	go r.Run(":" + port)
	logger.Infof("server listening on :%s", port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	logger.Info("shutdown signal received")
}
