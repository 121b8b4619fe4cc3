package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meetscribe/internal/ai"
	"meetscribe/internal/api"
	"meetscribe/internal/assistant"
	"meetscribe/internal/cache"
	"meetscribe/internal/config"
	"meetscribe/internal/logging"
	"meetscribe/internal/store"
	"meetscribe/internal/transcript"
	"meetscribe/internal/video"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	release := os.Getenv("GIN_MODE") != gin.DebugMode
	logging.Setup("meetscribe", release)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Default to release mode unless explicitly overridden.
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, cleanup := newStore(cfg)
	defer cleanup()

	var summaries *cache.Summaries
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		summaries = cache.NewSummaries(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("summary cache enabled")
	}

	completer := ai.NewClient(cfg.OpenAIKey)
	fetcher := transcript.NewFetcher(nil)
	svc := assistant.NewService(st, fetcher, completer, summaries)
	videoClient := video.NewClient(cfg.VideoAPIKey, cfg.VideoAPISecret, cfg.VideoAPIURL, nil)
	if !videoClient.Configured() {
		log.Warn().Msg("video provider credentials not set, meeting endpoints disabled")
	}

	r := gin.Default()
	r.Use(corsMiddleware())

	srv := api.NewServer(st, svc, videoClient, cfg)
	srv.RegisterRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// newStore connects to MongoDB when MONGODB_URI is set and falls back to
// in-memory storage otherwise. The returned cleanup closes the connection.
func newStore(cfg *config.Config) (store.Store, func()) {
	if cfg.MongoURI == "" {
		log.Warn().Msg("MONGODB_URI not set, using in-memory storage")
		return store.NewMemoryStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	st := store.NewMongoStore(client.Database(cfg.MongoDB))
	if err := st.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	log.Info().Str("database", cfg.MongoDB).Msg("connected to MongoDB")

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}
	return st, cleanup
}

// corsMiddleware adds CORS headers for the web client
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
