package v1

import (
	"refermatch/internal/config"
	"refermatch/internal/database"
	"refermatch/internal/delivery/http/handler"
	"refermatch/internal/delivery/http/middleware"
	"refermatch/internal/domain/linktoken"
	"refermatch/internal/pkg/jwt"
	"refermatch/internal/repository"
	"refermatch/internal/tasks"
	"refermatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Deps carries the process-level resources the v1 routes need. Everything
// else (repositories, usecases, handlers) is assembled here.
type Deps struct {
	Config config.Config
	DB     database.DB
	Queue  *tasks.Queue
	Runs   *tasks.StatusStore
	Logger *zap.Logger
}

func Register(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(deps.Config.JWT.AccessSecret, deps.Config.JWT.AccessExpiresIn)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	postings := repository.NewPostgresPostingRepository(deps.DB)
	profiles := repository.NewPostgresProfileRepository(deps.DB)
	connectors := repository.NewPostgresConnectorRepository(deps.DB)
	recommendations := repository.NewPostgresRecommendationRepository(deps.DB)
	links := repository.NewPostgresRecommendationLinkRepository(deps.DB)
	matches := repository.NewPostgresMatchRepository(deps.DB)
	relationships := repository.NewPostgresRelationshipRepository(deps.DB)

	codec := &linktoken.Codec{
		Secret:         deps.Config.Token.Secret,
		PreviousSecret: deps.Config.Token.PreviousSecret,
		MaxAge:         deps.Config.Token.MaxAge,
		FutureSkew:     deps.Config.Token.FutureSkew,
	}

	eligibility := usecase.NewEligibilityUsecase(matches, relationships)
	recommendationUC := usecase.NewRecommendationUsecase(
		postings,
		profiles,
		connectors,
		recommendations,
		links,
		eligibility,
		codec,
		deps.Config.Matching.ListingMinScore,
		deps.Logger,
	)

	recommendationHandler := handler.NewRecommendationHandler(recommendationUC)
	runHandler := handler.NewRunHandler(deps.Queue, deps.Runs, deps.Logger)

	// Deep links are opened by connectors from chat or email; the signed
	// token in the path is their authentication.
	recommendationHandler.RegisterRoutes(r)

	protected := r.Group("", authMw.Middleware())
	runHandler.RegisterRoutes(protected)
}
