package handler

import (
	"errors"
	"strings"

	"refermatch/internal/delivery/http/dto"
	"refermatch/internal/delivery/http/middleware"
	"refermatch/internal/pkg/response"
	"refermatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RecommendationHandler struct {
	uc usecase.RecommendationUsecase
}

func NewRecommendationHandler(uc usecase.RecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{uc: uc}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/recommend")
	grp.Get("/:token", h.View)
	grp.Post("/:token/submit", h.Submit)
}

func (h *RecommendationHandler) View(c fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing token", nil, nil)
	}

	view, err := h.uc.View(c.Context(), token)
	if err != nil {
		return mapRecommendationError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, toRecommendationViewResponse(view))
}

type submitRecommendationRequest struct {
	ProfileID string `json:"profile_id"`
	Note      string `json:"note"`
}

func (h *RecommendationHandler) Submit(c fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing token", nil, nil)
	}

	var req submitRecommendationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid profile_id", nil, err)
	}

	rec, err := h.uc.Submit(c.Context(), token, profileID, strings.TrimSpace(req.Note))
	if err != nil {
		return mapRecommendationError(err)
	}

	return response.Success(c, fiber.StatusCreated, "recommendation submitted", dto.RecommendationSubmittedResponse{
		ID:        rec.ID,
		PostingID: rec.PostingID,
		ProfileID: rec.ProfileID,
		Note:      rec.Note,
		CreatedAt: rec.CreatedAt,
	})
}

func mapRecommendationError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrTokenInvalid):
		return middleware.NewAppError(fiber.StatusGone, "This link is no longer valid", nil, err)
	case errors.Is(err, usecase.ErrProfileNotEligible):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Profile is not recommendable for this posting", nil, err)
	case errors.Is(err, usecase.ErrPostingNotFound), errors.Is(err, usecase.ErrConnectorNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	default:
		return err
	}
}

func toRecommendationViewResponse(view usecase.RecommendationView) dto.RecommendationViewResponse {
	names := make(map[uuid.UUID]string, len(view.Profiles))
	for _, p := range view.Profiles {
		names[p.ID] = p.FullName
	}

	out := dto.RecommendationViewResponse{
		Posting: dto.RecommendationPostingResponse{
			ID:             view.Posting.ID,
			Organization:   view.Posting.Organization,
			Title:          view.Posting.Title,
			Seniority:      view.Posting.Seniority,
			NonNegotiables: view.Posting.NonNegotiables,
		},
		ConnectorName: view.ConnectorName,
		Candidates:    make([]dto.RecommendationCandidateResponse, 0, len(view.Candidates)),
	}
	for _, cand := range view.Candidates {
		out.Candidates = append(out.Candidates, dto.RecommendationCandidateResponse{
			ProfileID:  cand.ProfileID,
			FullName:   names[cand.ProfileID],
			Score:      cand.Score,
			Confidence: cand.Confidence,
			Evidence:   cand.Evidence,
		})
	}
	return out
}
