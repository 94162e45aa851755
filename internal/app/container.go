package app

import (
	"context"
	"fmt"
	"time"

	"refermatch/internal/ai"
	"refermatch/internal/ai/gemini"
	"refermatch/internal/config"
	"refermatch/internal/database"
	dbpostgres "refermatch/internal/database/postgres"
	"refermatch/internal/domain/linktoken"
	"refermatch/internal/notify"
	"refermatch/internal/repository"
	"refermatch/internal/tasks"
	"refermatch/internal/usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container owns the process-level resources and the usecases the worker
// drives. The HTTP layer assembles its own handlers from the pieces it needs.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Redis  *redis.Client
	Queue  *tasks.Queue
	Runs   *tasks.StatusStore
	Scorer ai.Scorer

	Batch  *usecase.BatchMatch
	Sync   usecase.RelationshipSyncUsecase
	Notify usecase.NotifyUsecase
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(connectCtx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	var scorer ai.Scorer
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			_ = db.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		scorer = gemini.NewScorer(client, logger)
	} else {
		logger.Warn("no scorer configured, matches will use deterministic scoring only")
	}

	postings := repository.NewPostgresPostingRepository(db)
	profiles := repository.NewPostgresProfileRepository(db)
	history := repository.NewPostgresWorkHistoryRepository(db)
	connectors := repository.NewPostgresConnectorRepository(db)
	matches := repository.NewPostgresMatchRepository(db)
	relationships := repository.NewPostgresRelationshipRepository(db)
	links := repository.NewPostgresRecommendationLinkRepository(db)

	codec := &linktoken.Codec{
		Secret:         cfg.Token.Secret,
		PreviousSecret: cfg.Token.PreviousSecret,
		MaxAge:         cfg.Token.MaxAge,
		FutureSkew:     cfg.Token.FutureSkew,
	}

	matchUC := usecase.NewMatchUsecase(postings, profiles, history, matches, scorer, cfg.Matching.ScorerCallTimeout, logger)
	batchUC := usecase.NewBatchMatchUsecase(matchUC, postings, profiles, cfg.Matching, logger)
	syncUC := usecase.NewRelationshipSyncUsecase(connectors, profiles, history, relationships, logger)
	eligibility := usecase.NewEligibilityUsecase(matches, relationships)
	notifyUC := usecase.NewNotifyUsecase(
		postings,
		profiles,
		connectors,
		matches,
		relationships,
		links,
		eligibility,
		codec,
		buildNotifyRouter(cfg.Notify, logger),
		cfg.Matching,
		cfg.Notify,
		cfg.App.BaseURL,
		logger,
	)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  rdb,
		Queue:  tasks.NewQueue(rdb),
		Runs:   tasks.NewStatusStore(rdb, 0),
		Scorer: scorer,
		Batch:  batchUC,
		Sync:   syncUC,
		Notify: notifyUC,
	}, nil
}

// buildNotifyRouter leaves an unconfigured provider absent so the router
// reports ErrNoChannel instead of calling into a dead client.
func buildNotifyRouter(cfg config.NotifyConfig, logger *zap.Logger) *notify.Router {
	router := &notify.Router{}
	if ch := notify.NewChatChannel(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatFromAddress, logger); ch != nil {
		router.Chat = ch
	}
	if ch := notify.NewEmailChannel(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom, logger); ch != nil {
		router.Email = ch
	}
	return router
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
