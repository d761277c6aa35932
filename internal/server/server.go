package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uet-rag/prospectus/internal/config"
	mid "github.com/uet-rag/prospectus/internal/server/middleware"
	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/ai"
	oai "github.com/uet-rag/prospectus/pkg/ai/ollama"
	gai "github.com/uet-rag/prospectus/pkg/ai/openai"
	"github.com/uet-rag/prospectus/pkg/logger"
	"github.com/uet-rag/prospectus/pkg/query"
	storepgx "github.com/uet-rag/prospectus/pkg/store/pgx"

	"github.com/go-playground/validator"
	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const Version = "1.0.0"

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewAIClient builds the configured AI client. AI_ADAPTER selects between
// the Ollama and OpenAI-compatible backends.
func NewAIClient() ai.Client {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
			TimeoutMin:            int64(util.GetEnvNumeric("AI_TIMEOUT_MIN", 5)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
			TimeoutMin:            int64(util.GetEnvNumeric("AI_TIMEOUT_MIN", 5)),
		})
	}
}

// NewDBPool connects to Postgres with pgvector types registered on every
// connection.
func NewDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		return nil, err
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgxv5.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	return pgxpool.NewWithConfig(ctx, poolConfig)
}

// RunMigrations applies pending schema migrations. A database already at the
// latest version is not an error.
func RunMigrations() error {
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "file://db/migrations")
	m, err := migrate.New(migrationsPath, util.GetEnv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(util.GetEnvString("CONFIG_PATH", "config.yaml"))
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	if err := RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	conn, err := NewDBPool(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	aiClient := NewAIClient()
	graphStore := storepgx.NewGraphDBStorageWithConnection(conn)

	embedDim := int(util.GetEnvNumeric("AI_EMBED_DIM", 768))
	if err := graphStore.EnsureVectorIndex(ctx, embedDim); err != nil {
		logger.Fatal("Failed to ensure vector index", "err", err)
	}

	retriever := query.NewHybridRetriever(aiClient, graphStore, query.WithTopK(cfg.TopK))
	guardrail := query.NewGuardrail(aiClient, util.GetEnvBool("ENABLE_GUARDRAIL", true),
		query.WithGuardrailPrompt(cfg.Prompts.Guardrail))
	engine := query.NewEngine(aiClient, retriever, guardrail,
		query.WithAnswerPrompt(cfg.Prompts.Answer))

	app := &mid.App{
		DBConn:   conn,
		AiClient: aiClient,
		Store:    graphStore,
		Engine:   engine,
		Version:  Version,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
